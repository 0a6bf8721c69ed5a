package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

func (h *Handler) ListLeagueCards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueCards")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	items, err := h.deckService.ListOwnedCards(ctx, principal.UserID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list league cards failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ownedCardsToDTO(ctx, items))
}

func (h *Handler) GetLeagueDeck(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueDeck")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	deck, err := h.deckService.GetDeck(ctx, principal.UserID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league deck failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deckToDTO(ctx, deck))
}

func (h *Handler) SelectLeagueDeck(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectLeagueDeck")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	var req selectDeckRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	deck, err := h.deckService.SelectDeck(ctx, usecase.SelectDeckInput{
		UserID:        principal.UserID,
		LeagueID:      leagueID,
		DriverCardIDs: req.DriverCardIDs,
		TeamCardIDs:   req.TeamCardIDs,
		EditMode:      req.EditMode,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "select league deck failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deckToDTO(ctx, deck))
}

func (h *Handler) ActivateSelectionCards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ActivateSelectionCards")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	selectionID := strings.TrimSpace(r.PathValue("selectionID"))
	var req activateCardsRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.activationService.Activate(ctx, usecase.ActivateCardsInput{
		UserID:       principal.UserID,
		SelectionID:  selectionID,
		DriverCardID: req.DriverCardID,
		TeamCardID:   req.TeamCardID,
		TargetPlayer: req.TargetPlayer,
		TargetDriver: req.TargetDriver,
		TargetTeam:   req.TargetTeam,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "activate selection cards failed", "selection_id", selectionID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, activationToDTO(ctx, view))
}

func (h *Handler) GetSelectionCards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSelectionCards")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	selectionID := strings.TrimSpace(r.PathValue("selectionID"))
	view, err := h.activationService.GetActivation(ctx, principal.UserID, selectionID)
	if err != nil {
		h.logger.WarnContext(ctx, "get selection cards failed", "selection_id", selectionID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, activationToDTO(ctx, view))
}

func (h *Handler) ListLeagueRaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueRaces")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	items, err := h.raceService.ListByLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list league races failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, raceSchedulesToDTO(ctx, items))
}
