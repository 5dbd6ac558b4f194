package models

import "time"

// Request types

type SuperAdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Codigo   string `json:"codigo"`
	Password string `json:"password,omitempty"`
}

type AdminAccountRequest struct {
	Codigo          string `json:"codigo"`
	PrimerNombre    string `json:"primer_nombre"`
	SegundoNombre   string `json:"segundo_nombre"`
	PrimerApellido  string `json:"primer_apellido"`
	SegundoApellido string `json:"segundo_apellido"`
	Email           string `json:"email"`
	Password        string `json:"password"`
}

type CreateOrganizationRequest struct {
	Name         string              `json:"name"`
	Slug         string              `json:"slug"`
	PrimaryColor string              `json:"primary_color"`
	LogoURL      *string             `json:"logo_url,omitempty"`
	Plan         string              `json:"plan,omitempty"`
	Admin        AdminAccountRequest `json:"admin"`
}

type UpdateOrganizationRequest struct {
	Name         string  `json:"name"`
	PrimaryColor string  `json:"primary_color"`
	LogoURL      *string `json:"logo_url,omitempty"`
	Plan         string  `json:"plan,omitempty"`
}

type ElectionRequest struct {
	Nombre             string        `json:"nombre"`
	Descripcion        string        `json:"descripcion"`
	FechaInicio        string        `json:"fecha_inicio"`
	FechaFin           string        `json:"fecha_fin"`
	ResultadosPublicos bool          `json:"resultados_publicos"`
	Options            VotingOptions `json:"options"`
}

type CandidateRequest struct {
	Nombres         string  `json:"nombres"`
	Apellido        string  `json:"apellido"`
	PartidoPolitico string  `json:"partido_politico"`
	Cargo           string  `json:"cargo"`
	FotoURL         string  `json:"foto_url"`
	Descripcion     string  `json:"descripcion"`
	ListColor       *string `json:"list_color,omitempty"`
	ListLogoURL     *string `json:"list_logo_url,omitempty"`
}

type VoterRequest struct {
	Codigo          string  `json:"codigo"`
	Rol             *Role   `json:"rol,omitempty"` // defaults to Estudiante
	PrimerNombre    string  `json:"primer_nombre"`
	SegundoNombre   string  `json:"segundo_nombre"`
	PrimerApellido  string  `json:"primer_apellido"`
	SegundoApellido string  `json:"segundo_apellido"`
	Curso           string  `json:"curso"`
	Paralelo        string  `json:"paralelo"`
	Email           *string `json:"email,omitempty"`
	Password        string  `json:"password,omitempty"`
}

// ImportedVoter mirrors the voter CSV columns.
type ImportedVoter struct {
	Codigo          string `json:"codigo"`
	PrimerNombre    string `json:"primer_nombre"`
	SegundoNombre   string `json:"segundo_nombre"`
	PrimerApellido  string `json:"primer_apellido"`
	SegundoApellido string `json:"segundo_apellido"`
	Curso           string `json:"curso"`
	Paralelo        string `json:"paralelo"`
}

type ImportVotersRequest struct {
	Voters []ImportedVoter `json:"voters"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type CastVoteRequest struct {
	Ballot
}

// Response types

type LoginResponse struct {
	SessionToken string `json:"session_token"`
	User         User   `json:"user"`
}

type CreateOrganizationResponse struct {
	Organization Organization `json:"organization"`
	Admin        User         `json:"admin"`
}

type ImportVotersResponse struct {
	Imported []User   `json:"imported"`
	Skipped  []string `json:"skipped"` // codes already present or repeated in the batch
}

type ElectionWithCandidates struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
}

type ResultsResponse struct {
	Election Election `json:"election"`
	Tally    Tally    `json:"tally"`
}

// AuditEntry is a vote as shown in the audit log; the ballot choice is omitted.
type AuditEntry struct {
	VoteID     string    `json:"vote_id"`
	ElectionID string    `json:"election_id"`
	Receipt    string    `json:"receipt"`
	CastAt     time.Time `json:"cast_at"`
	CastAgo    string    `json:"cast_ago"`
}

type ReceiptResponse struct {
	Receipt    string    `json:"receipt"`
	ElectionID string    `json:"election_id"`
	Election   string    `json:"election"`
	CastAt     time.Time `json:"cast_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
