// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, status, remote and duration_ms once the handler returns.
Responses with a 5xx status are logged at error level.

# Sessions

Routes that need a logged-in user are wrapped with Sessions.Require:

	sessions := &middleware.Sessions{Salt: cfg.SessionSalt, Users: st}
	mux.HandleFunc("GET /api/me", middleware.WithLogging(sessions.Require(h.Me)))

The token travels in the X-Session-Token header. The user is reloaded on
every request and handed to the handler through the context:

	user, _ := middleware.UserFromContext(r.Context())

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigin)(mux),
	}

An empty origin echoes the request's Origin header. Allows methods GET, POST,
PUT, DELETE, OPTIONS with headers Content-Type and X-Session-Token.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.CodedErrorResponse(w, http.StatusConflict, "already_voted", "message")

ParseJSONBody decodes at most 4 MiB.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Used in request logs and in the login failure log.
*/
package middleware
