// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package receipt builds the opaque confirmation string returned to a voter
// after a successful cast.
//
// Format: rcpt-<election[:4]>-<voter[:4]>-<base62 of the vote id's first 8 bytes>.
// The random tail is taken from the vote id the store allocates inside the
// cast transaction, so a receipt cannot be predicted before the vote exists.
// Uniqueness is enforced by the vote table, not by this package.
package receipt

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const prefix = "rcpt-"

var pattern = regexp.MustCompile(`^rcpt-[0-9A-Za-z_]{1,4}-[0-9A-Za-z_]{1,4}-[0-9A-Za-z]{1,11}$`)

// Generate builds the receipt for a vote. voteID should be a UUID; anything
// else is hashed into one so the tail keeps its length.
func Generate(electionID, voterID, voteID string) string {
	id, err := uuid.Parse(voteID)
	if err != nil {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(voteID))
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(short(electionID))
	b.WriteByte('-')
	b.WriteString(short(voterID))
	b.WriteByte('-')
	b.WriteString(base62Encode(id[:8]))
	return b.String()
}

// Valid reports whether s has the shape of a receipt.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

func short(id string) string {
	id = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			return r
		}
		return -1
	}, id)
	if id == "" {
		return "_"
	}
	if len(id) > 4 {
		return id[:4]
	}
	return id
}

// base62Encode converts up to 8 bytes to base62 (0-9, a-z, A-Z).
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11)
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}
