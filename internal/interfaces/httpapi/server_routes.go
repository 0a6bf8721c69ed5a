package httpapi

import "net/http"

// authed registers an authenticated route whose server span is named after
// the route pattern.
func authed(mux *http.ServeMux, pattern string, verifier TokenVerifier, fn http.HandlerFunc) {
	mux.Handle(pattern, routeSpanName(RequireAuth(verifier, fn)))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerSelectionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	authed(mux, "GET /v1/selections/current", verifier, handler.GetCurrentSelection)
	authed(mux, "GET /v1/selections/used", verifier, handler.GetUsedSelections)
	authed(mux, "POST /v1/selections/save", verifier, handler.SaveSelection)
	authed(mux, "POST /v1/selections/admin/override", verifier, handler.AdminOverrideSelection)
}

func registerCardRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	authed(mux, "GET /v1/leagues/{leagueID}/cards", verifier, handler.ListLeagueCards)
	authed(mux, "GET /v1/leagues/{leagueID}/cards/deck", verifier, handler.GetLeagueDeck)
	authed(mux, "POST /v1/leagues/{leagueID}/cards/select", verifier, handler.SelectLeagueDeck)
	authed(mux, "POST /v1/selections/{selectionID}/cards", verifier, handler.ActivateSelectionCards)
	authed(mux, "GET /v1/selections/{selectionID}/cards", verifier, handler.GetSelectionCards)
}

func registerCalendarRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	authed(mux, "GET /v1/leagues/{leagueID}/races", verifier, handler.ListLeagueRaces)
}
