// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package lifecycle computes an election's status from its date range.
//
// The stored estado column is never trusted; every read path calls Apply.
package lifecycle

import (
	"time"

	"github.com/danielhkuo/urna/models"
)

// DateLayout is the format of fecha_inicio and fecha_fin.
const DateLayout = "2006-01-02"

// Evaluate returns the status of an election running from start to end
// (inclusive, whole days) as seen on the day of now in loc.
// Dates that do not parse, or an end before the start, yield StatusClosed.
func Evaluate(start, end string, now time.Time, loc *time.Location) models.Status {
	if loc == nil {
		loc = time.Local
	}

	startDay, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return models.StatusClosed
	}
	endDay, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return models.StatusClosed
	}
	if endDay.Before(startDay) {
		return models.StatusClosed
	}

	today := midnight(now.In(loc))
	endOfDay := endDay.AddDate(0, 0, 1).Add(-time.Nanosecond)

	switch {
	case today.After(endOfDay):
		return models.StatusClosed
	case !today.Before(startDay):
		return models.StatusActive
	default:
		return models.StatusUpcoming
	}
}

// Apply returns a copy of e with Estado replaced by the evaluated status.
func Apply(e models.Election, now time.Time, loc *time.Location) models.Election {
	e.Estado = Evaluate(e.FechaInicio, e.FechaFin, now, loc)
	return e
}

// ApplyAll evaluates every election in place and returns the slice.
func ApplyAll(elections []models.Election, now time.Time, loc *time.Location) []models.Election {
	for i := range elections {
		elections[i] = Apply(elections[i], now, loc)
	}
	return elections
}

// ValidRange reports whether start and end parse and end is not before start.
func ValidRange(start, end string) bool {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return false
	}
	return !e.Before(s)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
