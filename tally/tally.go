// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/danielhkuo/urna/models"
)

// Aggregate counts votes for one election. Votes of other elections are
// ignored. The result depends only on the inputs.
func Aggregate(election models.Election, candidates []models.Candidate, votes []models.Vote) models.Tally {
	b := NewBuilder(election, candidates)
	for _, v := range votes {
		b.Add(v)
	}
	return b.Result()
}

// Builder accumulates a tally one vote at a time, so a caller can stream the
// vote log from the store. Not safe for concurrent use.
type Builder struct {
	electionID string
	candidates []models.Candidate
	index      map[string]int
	counts     []int

	total    int
	blank    int
	null     int
	orphaned int

	writeIns     map[string]int
	writeInNames map[string]string // key to first spelling
	writeInOrder []string
	fold         cases.Caser
}

// NewBuilder starts an empty tally. Only candidates of election are counted
// as candidates; votes for any other candidate id land in Orphaned.
func NewBuilder(election models.Election, candidates []models.Candidate) *Builder {
	b := &Builder{
		electionID:   election.ID,
		index:        map[string]int{},
		writeIns:     map[string]int{},
		writeInNames: map[string]string{},
		fold:         cases.Fold(),
	}
	for _, c := range candidates {
		if c.EleccionID != election.ID {
			continue
		}
		if _, dup := b.index[c.ID]; dup {
			continue
		}
		b.index[c.ID] = len(b.candidates)
		b.candidates = append(b.candidates, c)
	}
	b.counts = make([]int, len(b.candidates))
	return b
}

// Add counts v. It reports false if v belongs to another election.
func (b *Builder) Add(v models.Vote) bool {
	if v.ElectionID != b.electionID {
		return false
	}
	b.total++

	switch v.Kind() {
	case models.KindCandidate:
		if i, ok := b.index[*v.CandidateID]; ok {
			b.counts[i]++
		} else {
			b.orphaned++
		}
	case models.KindWriteIn:
		key := WriteInKey(b.fold, *v.WriteInName)
		if _, seen := b.writeIns[key]; !seen {
			b.writeInOrder = append(b.writeInOrder, key)
			b.writeInNames[key] = collapseSpace(*v.WriteInName)
		}
		b.writeIns[key]++
	case models.KindNull:
		b.null++
	default:
		b.blank++
	}
	return true
}

// Result returns the tally so far. Calling it does not reset the builder.
func (b *Builder) Result() models.Tally {
	t := models.Tally{
		ElectionID: b.electionID,
		TotalVotes: b.total,
		Candidates: make([]models.CandidateResult, len(b.candidates)),
		Blank:      models.Bucket{Votes: b.blank, Percentage: percent(b.blank, b.total)},
		Null:       models.Bucket{Votes: b.null, Percentage: percent(b.null, b.total)},
		Orphaned:   models.Bucket{Votes: b.orphaned, Percentage: percent(b.orphaned, b.total)},
		WriteIns:   make([]models.WriteInResult, 0, len(b.writeInOrder)),
	}

	for i, c := range b.candidates {
		t.Candidates[i] = models.CandidateResult{
			Candidate:  c,
			Votes:      b.counts[i],
			Percentage: percent(b.counts[i], b.total),
		}
	}
	sort.SliceStable(t.Candidates, func(i, j int) bool {
		return t.Candidates[i].Votes > t.Candidates[j].Votes
	})
	for i := range t.Candidates {
		if i > 0 && t.Candidates[i].Votes == t.Candidates[i-1].Votes {
			t.Candidates[i].Rank = t.Candidates[i-1].Rank
		} else {
			t.Candidates[i].Rank = i + 1
		}
	}

	for _, key := range b.writeInOrder {
		n := b.writeIns[key]
		t.WriteIns = append(t.WriteIns, models.WriteInResult{
			Key:        key,
			Name:       b.writeInNames[key],
			Votes:      n,
			Percentage: percent(n, b.total),
		})
	}
	sort.SliceStable(t.WriteIns, func(i, j int) bool {
		return t.WriteIns[i].Votes > t.WriteIns[j].Votes
	})

	return t
}

// WriteInKey is the grouping key for a write-in name: trimmed, NFC
// normalized and case folded, so "José", "JOSÉ" and "josé" match.
func WriteInKey(fold cases.Caser, name string) string {
	return fold.String(norm.NFC.String(collapseSpace(name)))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// percent returns n/total as a percentage rounded to two decimals, or 0
// when total is 0.
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)*10000/float64(total)) / 100
}
