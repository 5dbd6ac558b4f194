// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the urna API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, service, cfg)

Every route except /health is wrapped in middleware.WithLogging. Routes
marked (session) also go through middleware.Sessions.Require and need the
X-Session-Token header.

# Endpoints

Health:

	GET /health

Sessions:

	POST /superadmin/login           - Super admin login
	POST /organizations/{slug}/login - Login by codigo
	GET  /me                         - Session user (session)
	PUT  /me/password                - Change password (session)

Organizations (session, super admin unless noted):

	GET    /organizations        - List
	POST   /organizations        - Create with its first admin
	GET    /organizations/{slug} - Branding (public)
	PUT    /organizations/{slug} - Update (org admin)
	DELETE /organizations/{slug} - Delete everything it owns

Elections and candidates (session):

	GET|POST          /organizations/{slug}/elections
	GET|PUT|DELETE    /organizations/{slug}/elections/{id}
	GET|POST          /organizations/{slug}/elections/{id}/candidates
	PUT|DELETE        /organizations/{slug}/candidates/{id}

Voter roll (session, admin):

	GET|POST   /organizations/{slug}/voters
	POST       /organizations/{slug}/voters/import
	PUT|DELETE /organizations/{slug}/voters/{id}

Voting and results:

	POST /organizations/{slug}/elections/{id}/votes   - Cast (session, student)
	GET  /organizations/{slug}/elections/{id}/results - Tally (session)
	GET  /organizations/{slug}/participation          - Report (session, admin)
	GET  /organizations/{slug}/audit                  - Vote log (session, admin)
	GET  /organizations/{slug}/receipts/{receipt}     - Verify receipt (public)
*/
package router
