package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "fantasy-racing"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	if mapped.HTTPStatus == http.StatusInternalServerError {
		// unmapped errors may carry driver or SQL detail
		writeInternalError(ctx, w)
		return
	}
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors:  errorItems(err, mapped),
		},
	})
}

// errorItems lists one item per deck violation, otherwise a single item for err.
func errorItems(err error, mapped mappedError) []googleErrorItem {
	var violations *card.DeckViolationError
	if errors.As(err, &violations) && len(violations.Violations) > 0 {
		items := make([]googleErrorItem, 0, len(violations.Violations))
		for _, v := range violations.Violations {
			items = append(items, googleErrorItem{
				Domain:  errorDomain,
				Reason:  deckViolationReason(v),
				Message: v.Error(),
			})
		}
		return items
	}

	return []googleErrorItem{
		{
			Domain:  errorDomain,
			Reason:  mapped.Reason,
			Message: err.Error(),
		},
	}
}

func deckViolationReason(err error) string {
	switch {
	case errors.Is(err, card.ErrInvalidCard):
		return "invalidCard"
	case errors.Is(err, card.ErrDuplicateCard):
		return "duplicateCard"
	case errors.Is(err, card.ErrSlotMismatch):
		return "slotMismatch"
	case errors.Is(err, card.ErrTierLimitExceeded):
		return "tierLimitExceeded"
	default:
		return "invalidDeck"
	}
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

func statusError(code int, reason, status string) mappedError {
	return mappedError{HTTPStatus: code, Reason: reason, Status: status}
}

func badRequest(reason string) mappedError {
	return statusError(http.StatusBadRequest, reason, "INVALID_ARGUMENT")
}

// errorRules is checked in order; the first sentinel err wraps wins.
var errorRules = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidInput, badRequest("invalidInput")},
	{selection.ErrInvalidSelection, badRequest("invalidSelection")},
	{selection.ErrDuplicateDriver, badRequest("duplicateDriver")},
	{selection.ErrDriverAlreadyUsed, badRequest("driverAlreadyUsed")},
	{selection.ErrTeamAlreadyUsed, badRequest("teamAlreadyUsed")},
	{selection.ErrSelectionLocked, badRequest("selectionLocked")},
	{card.ErrDeckLocked, badRequest("deckLocked")},
	{card.ErrDeadlinePassed, badRequest("deadlinePassed")},
	{card.ErrCardsUnavailable, badRequest("cardsUnavailable")},
	{card.ErrNotInDeck, badRequest("notInDeck")},
	{card.ErrAlreadyUsedThisSeason, badRequest("alreadyUsedThisSeason")},
	{card.ErrTargetRequired, badRequest("targetRequired")},
	{card.ErrInvalidCard, badRequest("invalidCard")},
	{card.ErrDuplicateCard, badRequest("invalidDeck")},
	{card.ErrSlotMismatch, badRequest("invalidDeck")},
	{card.ErrTierLimitExceeded, badRequest("invalidDeck")},
	{usecase.ErrForbidden, statusError(http.StatusForbidden, "forbidden", "PERMISSION_DENIED")},
	{usecase.ErrNotFound, statusError(http.StatusNotFound, "notFound", "NOT_FOUND")},
	{usecase.ErrUnauthorized, statusError(http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED")},
	{usecase.ErrConflict, statusError(http.StatusConflict, "conflict", "ABORTED")},
	{ErrRateLimited, statusError(http.StatusTooManyRequests, "rateLimitExceeded", "RESOURCE_EXHAUSTED")},
	{usecase.ErrDependencyUnavailable, statusError(http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE")},
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	for _, rule := range errorRules {
		if errors.Is(err, rule.target) {
			return rule.mapped
		}
	}
	return statusError(http.StatusInternalServerError, "internalError", "INTERNAL")
}
