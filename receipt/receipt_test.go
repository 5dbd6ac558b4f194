// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package receipt

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerate_Shape(t *testing.T) {
	voteID := uuid.NewString()
	r := Generate("3f2a9c1e-aaaa", "b71d0c44-bbbb", voteID)

	assert.True(t, strings.HasPrefix(r, "rcpt-3f2a-b71d-"), r)
	assert.True(t, Valid(r), r)
}

func TestGenerate_Deterministic(t *testing.T) {
	voteID := uuid.NewString()
	assert.Equal(t, Generate("e", "v", voteID), Generate("e", "v", voteID))
}

func TestGenerate_DistinctPerVote(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 10000; i++ {
		r := Generate("election", "voter", uuid.NewString())
		assert.False(t, seen[r], "duplicate receipt %s", r)
		seen[r] = true
	}
}

func TestGenerate_OddInputs(t *testing.T) {
	tests := []struct {
		name       string
		electionID string
		voterID    string
		voteID     string
	}{
		{"short ids", "e1", "v", uuid.NewString()},
		{"empty ids", "", "", uuid.NewString()},
		{"punctuation", "e/1?", "v#2", uuid.NewString()},
		{"non uuid vote id", "e1", "v1", "vote-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Generate(tt.electionID, tt.voterID, tt.voteID)
			assert.True(t, Valid(r), r)
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"rcpt-3f2a-b71d-8kLm2Q", true},
		{"rcpt-e1-v-0", true},
		{"rcpt-3f2a-b71d-", false},
		{"RCPT-3f2a-b71d-8kLm2Q", false},
		{"rcpt-3f2a-b71d-8kLm2Q; DROP TABLE vote", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.in), tt.in)
	}
}

func TestBase62Encode(t *testing.T) {
	assert.Equal(t, "0", base62Encode([]byte{0}))
	assert.Equal(t, "z", base62Encode([]byte{35}))
	assert.Equal(t, "10", base62Encode([]byte{62}))
	assert.LessOrEqual(t, len(base62Encode([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})), 11)
}
