// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/urna/auth"
	"github.com/danielhkuo/urna/cliparse"
	"github.com/danielhkuo/urna/db"
	"github.com/danielhkuo/urna/models"
	"github.com/danielhkuo/urna/store/sqlstore"
	"github.com/danielhkuo/urna/voting"
)

// TestSalt signs session tokens in tests.
const TestSalt = "test-session-salt"

// TestPassword is the password of every fixture admin.
const TestPassword = "correct-horse"

// Today is the fixed clock used by fixtures and GetTestConfig. Elections
// created with ActiveRange are open on this day.
var Today = time.Date(2025, time.May, 14, 10, 30, 0, 0, time.UTC)

// SetupTestDB opens a fresh sqlite database in a temp dir with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "urna-test.db")
	conn, err := db.Open(context.Background(), db.SQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore wraps SetupTestDB in a sqlstore.Store
func SetupTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	return sqlstore.New(SetupTestDB(t), db.SQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		SessionSalt:  TestSalt,
		Timezone:     "UTC",
		Location:     time.UTC,
		CastTimeout:  5 * time.Second,
	}
}

// NewTestService builds a voting service on st with the fixture clock
func NewTestService(st *sqlstore.Store, cfg cliparse.Config) *voting.Service {
	return voting.NewService(st, voting.Config{
		Location:    cfg.Location,
		CastTimeout: cfg.CastTimeout,
		Now:         func() time.Time { return Today },
	})
}

// ActiveRange returns fecha_inicio and fecha_fin around Today.
func ActiveRange() (string, string) {
	return Today.AddDate(0, 0, -1).Format("2006-01-02"), Today.AddDate(0, 0, 1).Format("2006-01-02")
}

// ClosedRange returns a date range that ended before Today.
func ClosedRange() (string, string) {
	return Today.AddDate(0, 0, -10).Format("2006-01-02"), Today.AddDate(0, 0, -3).Format("2006-01-02")
}

// CreateTestOrganization creates an organization with an admin whose code is
// "admin" and password TestPassword
func CreateTestOrganization(t *testing.T, st *sqlstore.Store, slug string) (models.Organization, models.User) {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	org, admin, err := st.CreateOrganization(context.Background(), models.Organization{
		Name:         "Colegio " + slug,
		Slug:         slug,
		PrimaryColor: "#1d4ed8",
	}, models.User{
		Codigo:         "admin",
		PrimerNombre:   "Ana",
		PrimerApellido: "Rector",
		PasswordHash:   hash,
	})
	if err != nil {
		t.Fatalf("Failed to create test organization: %v", err)
	}
	return org, admin
}

// CreateTestStudent adds a student voter to the organization
func CreateTestStudent(t *testing.T, st *sqlstore.Store, orgID, codigo string) models.User {
	t.Helper()

	u, err := st.CreateUser(context.Background(), models.User{
		OrganizationID: &orgID,
		Codigo:         codigo,
		Rol:            models.RoleStudent,
		PrimerNombre:   "Est",
		PrimerApellido: codigo,
		Curso:          "3ro",
		Paralelo:       "A",
	})
	if err != nil {
		t.Fatalf("Failed to create test student: %v", err)
	}
	return u
}

// CreateTestElection creates an election spanning start..end
func CreateTestElection(t *testing.T, st *sqlstore.Store, orgID, start, end string, opts models.VotingOptions) models.Election {
	t.Helper()

	e, err := st.CreateElection(context.Background(), models.Election{
		OrganizationID: orgID,
		Nombre:         "Consejo estudiantil",
		FechaInicio:    start,
		FechaFin:       end,
		Estado:         models.StatusUpcoming,
		Options:        opts,
	})
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e
}

// AddTestCandidate adds a candidate to an election
func AddTestCandidate(t *testing.T, st *sqlstore.Store, electionID, nombres string) models.Candidate {
	t.Helper()

	c, err := st.CreateCandidate(context.Background(), models.Candidate{
		EleccionID:      electionID,
		Nombres:         nombres,
		Apellido:        "Lista",
		PartidoPolitico: "Lista " + nombres,
		Cargo:           "Presidente",
	})
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return c
}

// SessionHeaders returns the headers that authenticate as userID
func SessionHeaders(userID string) map[string]string {
	return map[string]string{"X-Session-Token": auth.IssueSession(userID, TestSalt, time.Now())}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
