// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/urna/cliparse"
	"github.com/danielhkuo/urna/handlers"
	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/store/sqlstore"
	"github.com/danielhkuo/urna/voting"
)

func NewRouter(st *sqlstore.Store, service *voting.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(st)
	sessionHandler := handlers.NewSessionHandler(st, cfg)
	orgHandler := handlers.NewOrganizationHandler(st)
	electionHandler := handlers.NewElectionHandler(st, service)
	voterHandler := handlers.NewVoterHandler(st)
	votingHandler := handlers.NewVotingHandler(st, service)
	resultsHandler := handlers.NewResultsHandler(st, service)

	sessions := &middleware.Sessions{Salt: cfg.SessionSalt, Users: st}

	public := middleware.WithLogging
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(sessions.Require(h))
	}

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Sessions
	mux.HandleFunc("POST /superadmin/login", public(sessionHandler.SuperAdminLogin))
	mux.HandleFunc("POST /organizations/{slug}/login", public(sessionHandler.Login))
	mux.HandleFunc("GET /me", authed(sessionHandler.Me))
	mux.HandleFunc("PUT /me/password", authed(sessionHandler.ChangePassword))

	// Organizations
	mux.HandleFunc("GET /organizations", authed(orgHandler.List))
	mux.HandleFunc("POST /organizations", authed(orgHandler.Create))
	mux.HandleFunc("GET /organizations/{slug}", public(orgHandler.Get))
	mux.HandleFunc("PUT /organizations/{slug}", authed(orgHandler.Update))
	mux.HandleFunc("DELETE /organizations/{slug}", authed(orgHandler.Delete))

	// Elections and candidates
	mux.HandleFunc("GET /organizations/{slug}/elections", authed(electionHandler.List))
	mux.HandleFunc("POST /organizations/{slug}/elections", authed(electionHandler.Create))
	mux.HandleFunc("GET /organizations/{slug}/elections/{id}", authed(electionHandler.Get))
	mux.HandleFunc("PUT /organizations/{slug}/elections/{id}", authed(electionHandler.Update))
	mux.HandleFunc("DELETE /organizations/{slug}/elections/{id}", authed(electionHandler.Delete))
	mux.HandleFunc("GET /organizations/{slug}/elections/{id}/candidates", authed(electionHandler.ListCandidates))
	mux.HandleFunc("POST /organizations/{slug}/elections/{id}/candidates", authed(electionHandler.CreateCandidate))
	mux.HandleFunc("PUT /organizations/{slug}/candidates/{id}", authed(electionHandler.UpdateCandidate))
	mux.HandleFunc("DELETE /organizations/{slug}/candidates/{id}", authed(electionHandler.DeleteCandidate))

	// Voter roll
	mux.HandleFunc("GET /organizations/{slug}/voters", authed(voterHandler.List))
	mux.HandleFunc("POST /organizations/{slug}/voters", authed(voterHandler.Create))
	mux.HandleFunc("POST /organizations/{slug}/voters/import", authed(voterHandler.Import))
	mux.HandleFunc("PUT /organizations/{slug}/voters/{id}", authed(voterHandler.Update))
	mux.HandleFunc("DELETE /organizations/{slug}/voters/{id}", authed(voterHandler.Delete))

	// Voting
	mux.HandleFunc("POST /organizations/{slug}/elections/{id}/votes", authed(votingHandler.CastVote))

	// Results, participation and audit
	mux.HandleFunc("GET /organizations/{slug}/elections/{id}/results", authed(resultsHandler.GetResults))
	mux.HandleFunc("GET /organizations/{slug}/participation", authed(resultsHandler.GetParticipation))
	mux.HandleFunc("GET /organizations/{slug}/audit", authed(resultsHandler.GetAudit))
	mux.HandleFunc("GET /organizations/{slug}/receipts/{receipt}", public(resultsHandler.VerifyReceipt))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("urna API v1"))
	})

	return mux
}
