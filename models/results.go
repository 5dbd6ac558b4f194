package models

// Tally result types

type CandidateResult struct {
	Candidate  Candidate `json:"candidate"`
	Votes      int       `json:"votes"`
	Percentage float64   `json:"percentage"`
	Rank       int       `json:"rank"` // 1-indexed ranking
}

// WriteInResult groups write-ins by Key. Name is the first spelling cast.
type WriteInResult struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type Bucket struct {
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// Tally is the aggregated result of one election. Orphaned counts votes whose
// candidate is not on the election's current candidate list.
type Tally struct {
	ElectionID string            `json:"election_id"`
	TotalVotes int               `json:"total_votes"`
	Candidates []CandidateResult `json:"candidates"`
	Blank      Bucket            `json:"blank"`
	Null       Bucket            `json:"null"`
	WriteIns   []WriteInResult   `json:"write_ins"`
	Orphaned   Bucket            `json:"orphaned"`
}

// Participation report types

type ElectionParticipation struct {
	ElectionID string `json:"election_id"`
	HasVoted   bool   `json:"has_voted"`
}

type VoterParticipation struct {
	VoterID      string                  `json:"voter_id"`
	Codigo       string                  `json:"codigo"`
	FullName     string                  `json:"full_name"`
	Curso        string                  `json:"curso"`
	Paralelo     string                  `json:"paralelo"`
	PerElection  []ElectionParticipation `json:"per_election"`
	MissingVotes int                     `json:"missing_votes"`
}

type ParticipationReport struct {
	ActiveElections    []string             `json:"active_elections"`
	TotalVoters        int                  `json:"total_voters"`
	VotersMissingVotes int                  `json:"voters_missing_votes"`
	Voters             []VoterParticipation `json:"voters"`
}
