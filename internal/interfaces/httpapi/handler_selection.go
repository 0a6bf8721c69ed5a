package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

func (h *Handler) GetCurrentSelection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentSelection")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID, err := leagueIDFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	round, err := optionalRound(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	current, err := h.selectionService.GetCurrent(ctx, usecase.GetCurrentSelectionInput{
		UserID:   principal.UserID,
		LeagueID: leagueID,
		Round:    round,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get current selection failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, currentSelectionToDTO(ctx, current))
}

func (h *Handler) GetUsedSelections(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUsedSelections")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID, err := leagueIDFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	round, err := optionalRound(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	used, err := h.selectionService.GetUsed(ctx, usecase.GetUsedInput{
		ActorUserID:  principal.UserID,
		TargetUserID: queryValue(r, "user_id", "userId"),
		LeagueID:     leagueID,
		Round:        round,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get used selections failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, usedViewToDTO(used))
}

func (h *Handler) SaveSelection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveSelection")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req saveSelectionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.selectionService.Save(ctx, usecase.SaveSelectionInput{
		UserID:        principal.UserID,
		LeagueID:      req.LeagueID,
		MainDriver:    req.MainDriver,
		ReserveDriver: req.ReserveDriver,
		Team:          req.Team,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save selection failed", "league_id", req.LeagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, selectionToDTO(ctx, item))
}

func (h *Handler) AdminOverrideSelection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminOverrideSelection")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req adminOverrideRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.selectionService.AdminOverride(ctx, usecase.AdminOverrideInput{
		ActorUserID:   principal.UserID,
		TargetUserID:  req.UserID,
		LeagueID:      req.LeagueID,
		RaceID:        req.RaceID,
		Round:         req.Round,
		MainDriver:    req.MainDriver,
		ReserveDriver: req.ReserveDriver,
		Team:          req.Team,
		AssignPoints:  req.AssignPoints,
		Notes:         req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "admin override failed",
			"league_id", req.LeagueID,
			"actor_user_id", principal.UserID,
			"target_user_id", req.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "selection overridden",
		"league_id", item.LeagueID,
		"actor_user_id", principal.UserID,
		"target_user_id", item.UserID,
		"round", item.Round,
	)
	writeSuccess(ctx, w, http.StatusOK, selectionToDTO(ctx, item))
}
