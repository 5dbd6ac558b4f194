package models

import (
	"slices"
	"strings"
	"time"
)

// Election status values. These are always derived from the election's
// date range; the stored value is only a display hint.
type Status string

const (
	StatusUpcoming Status = "Próxima"
	StatusActive   Status = "Activa"
	StatusClosed   Status = "Cerrada"
)

// Ballot kinds
type BallotKind string

const (
	KindCandidate BallotKind = "candidate"
	KindBlank     BallotKind = "blank"
	KindNull      BallotKind = "null"
	KindWriteIn   BallotKind = "write_in"
)

// Domain types

type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	PrimaryColor string    `json:"primary_color"`
	LogoURL      *string   `json:"logo_url,omitempty"`
	Plan         string    `json:"plan,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type User struct {
	ID              string   `json:"id"`
	OrganizationID  *string  `json:"organization_id,omitempty"` // nil only for SuperAdmin
	Codigo          string   `json:"codigo"`
	Rol             Role     `json:"rol"`
	HaVotado        []string `json:"ha_votado"`
	PrimerNombre    string   `json:"primer_nombre"`
	SegundoNombre   string   `json:"segundo_nombre"`
	PrimerApellido  string   `json:"primer_apellido"`
	SegundoApellido string   `json:"segundo_apellido"`
	Curso           string   `json:"curso"`
	Paralelo        string   `json:"paralelo"`
	Email           *string  `json:"email,omitempty"`
	PasswordHash    string   `json:"-"` // Never expose in JSON
}

// HasVotedIn reports whether electionID is already in HaVotado.
func (u User) HasVotedIn(electionID string) bool {
	return slices.Contains(u.HaVotado, electionID)
}

// FullName joins the non-empty name parts with single spaces.
func (u User) FullName() string {
	return strings.Join(strings.Fields(strings.Join([]string{
		u.PrimerNombre, u.SegundoNombre, u.PrimerApellido, u.SegundoApellido,
	}, " ")), " ")
}

// InOrganization reports whether the user belongs to orgID.
func (u User) InOrganization(orgID string) bool {
	return u.OrganizationID != nil && *u.OrganizationID == orgID
}

// VotingOptions holds the per-election ballot toggles. A nil field means the
// option was never configured, which is treated as allowed so that elections
// created before the toggles existed keep accepting every ballot kind.
type VotingOptions struct {
	AllowBlank   *bool `json:"allow_blank,omitempty"`
	AllowNull    *bool `json:"allow_null,omitempty"`
	AllowWriteIn *bool `json:"allow_write_in,omitempty"`
}

func (o VotingOptions) BlankAllowed() bool   { return o.AllowBlank == nil || *o.AllowBlank }
func (o VotingOptions) NullAllowed() bool    { return o.AllowNull == nil || *o.AllowNull }
func (o VotingOptions) WriteInAllowed() bool { return o.AllowWriteIn == nil || *o.AllowWriteIn }

// Allows reports whether the given ballot kind is permitted. Candidate
// ballots are always permitted.
func (o VotingOptions) Allows(kind BallotKind) bool {
	switch kind {
	case KindBlank:
		return o.BlankAllowed()
	case KindNull:
		return o.NullAllowed()
	case KindWriteIn:
		return o.WriteInAllowed()
	case KindCandidate:
		return true
	}
	return false
}

type Election struct {
	ID                 string        `json:"id"`
	OrganizationID     string        `json:"organization_id"`
	Nombre             string        `json:"nombre"`
	Descripcion        string        `json:"descripcion,omitempty"`
	FechaInicio        string        `json:"fecha_inicio"` // YYYY-MM-DD
	FechaFin           string        `json:"fecha_fin"`    // YYYY-MM-DD, inclusive
	Estado             Status        `json:"estado"`
	ResultadosPublicos bool          `json:"resultados_publicos"`
	Options            VotingOptions `json:"options"`
}

type Candidate struct {
	ID              string  `json:"id"`
	EleccionID      string  `json:"eleccion_id"`
	Nombres         string  `json:"nombres"`
	Apellido        string  `json:"apellido"`
	PartidoPolitico string  `json:"partido_politico"`
	Cargo           string  `json:"cargo"`
	FotoURL         string  `json:"foto_url"`
	Descripcion     string  `json:"descripcion,omitempty"`
	ListColor       *string `json:"list_color,omitempty"`
	ListLogoURL     *string `json:"list_logo_url,omitempty"`
}

// Ballot is what a voter submits. Exactly one kind applies.
type Ballot struct {
	Kind        BallotKind `json:"kind"`
	CandidateID string     `json:"candidate_id,omitempty"`
	WriteInName string     `json:"write_in_name,omitempty"`
}

// Vote is an immutable record in the vote log.
type Vote struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	ElectionID     string    `json:"election_id"`
	VoterID        string    `json:"voter_id"`
	CandidateID    *string   `json:"candidate_id"`
	WriteInName    *string   `json:"write_in_name,omitempty"`
	IsNullVote     bool      `json:"is_null_vote,omitempty"`
	CastAt         time.Time `json:"cast_at"`
	Receipt        string    `json:"receipt"`
}

// NewVote builds the vote record for a ballot. Only the field matching the
// ballot kind is set; a blank ballot sets none. castAt is kept to the
// microsecond, the precision the stores persist.
func NewVote(id, orgID, electionID, voterID string, b Ballot, castAt time.Time) Vote {
	v := Vote{
		ID:             id,
		OrganizationID: orgID,
		ElectionID:     electionID,
		VoterID:        voterID,
		CastAt:         castAt.UTC().Truncate(time.Microsecond),
	}
	switch b.Kind {
	case KindCandidate:
		cid := b.CandidateID
		v.CandidateID = &cid
	case KindWriteIn:
		name := b.WriteInName
		v.WriteInName = &name
	case KindNull:
		v.IsNullVote = true
	}
	return v
}

// Kind classifies a stored vote.
func (v Vote) Kind() BallotKind {
	switch {
	case v.CandidateID != nil:
		return KindCandidate
	case v.WriteInName != nil:
		return KindWriteIn
	case v.IsNullVote:
		return KindNull
	default:
		return KindBlank
	}
}

// CastResult is returned by a successful cast. Voter is the authoritative
// post-cast state for the caller's session.
type CastResult struct {
	Vote  Vote `json:"vote"`
	Voter User `json:"voter"`
}
