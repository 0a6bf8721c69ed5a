package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

type Handler struct {
	selectionService  *usecase.SelectionService
	deckService       *usecase.DeckService
	activationService *usecase.CardActivationService
	raceService       *usecase.RaceService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	selectionService *usecase.SelectionService,
	deckService *usecase.DeckService,
	activationService *usecase.CardActivationService,
	raceService *usecase.RaceService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		selectionService:  selectionService,
		deckService:       deckService,
		activationService: activationService,
		raceService:       raceService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a strict JSON body into dst and validates it.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(ctx, dst)
}

// queryValue returns the first non-empty value among the snake_case and camelCase spellings.
func queryValue(r *http.Request, names ...string) string {
	query := r.URL.Query()
	for _, name := range names {
		if v := strings.TrimSpace(query.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

func leagueIDFromQuery(r *http.Request) (string, error) {
	leagueID := queryValue(r, "league_id", "leagueId")
	if leagueID == "" {
		return "", fmt.Errorf("%w: league_id is required", usecase.ErrInvalidInput)
	}
	return leagueID, nil
}

// optionalRound parses the round query parameter; an absent value is zero.
func optionalRound(r *http.Request) (int, error) {
	raw := queryValue(r, "round")
	if raw == "" {
		return 0, nil
	}

	round, err := strconv.Atoi(raw)
	if err != nil || round <= 0 {
		return 0, fmt.Errorf("%w: round must be a positive integer", usecase.ErrInvalidInput)
	}
	return round, nil
}
