package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/roster"
	"github.com/riskibarqy/fantasy-racing/internal/domain/user"
	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-racing/internal/platform/id"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
	"github.com/riskibarqy/fantasy-racing/internal/platform/randsrc"
	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(v time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = v
}

// tokenVerifier treats the bearer token as the user id.
type tokenVerifier struct{}

func (tokenVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token == "bad" {
		return user.Principal{}, usecase.ErrUnauthorized
	}
	return user.Principal{UserID: token, Email: token + "@example.com"}, nil
}

type envelope struct {
	APIVersion string         `json:"apiVersion"`
	Data       map[string]any `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
		Errors []struct {
			Domain string `json:"domain"`
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

type testServer struct {
	clock  *fixedClock
	router http.Handler
}

func newTestServer(t *testing.T, now time.Time, limiter *IPRateLimiter) *testServer {
	t.Helper()

	clock := &fixedClock{now: now}
	logger := logging.NewNop()
	rosters := roster.DefaultCatalog()
	ids := id.NewUUIDGenerator()

	leagues := memory.NewLeagueRepository(memory.SeedLeagues(), memory.SeedMembers())
	races := memory.NewRaceRepository(memory.SeedRaces())
	selections := memory.NewSelectionRepository()
	cards := memory.NewCardRepository(card.DefaultCatalog())
	results := memory.NewRaceResultRepository(memory.SeedRaceResults())

	reuse := usecase.NewReuseCycleService(memory.NewReuseLedgerRepository(), selections, rosters, logger)
	selectionService := usecase.NewSelectionService(leagues, races, selections, cards, results, reuse, rosters, ids, logger)
	selectionService.SetClock(clock.Now)

	deckService := usecase.NewDeckService(leagues, races, cards, cards, cards.Usages(), logger)
	deckService.SetClock(clock.Now)

	activationService := usecase.NewCardActivationService(leagues, races, selections, cards, cards, cards.Usages(), cards, rosters, randsrc.New(7), ids, logger)
	activationService.SetClock(clock.Now)

	raceService := usecase.NewRaceService(leagues, races)
	raceService.SetClock(clock.Now)

	handler := NewHandler(selectionService, deckService, activationService, raceService, logger)
	return &testServer{
		clock:  clock,
		router: NewRouter(handler, tokenVerifier{}, logger, RouterOptions{RateLimiter: limiter}),
	}
}

func (s *testServer) do(t *testing.T, method, target, userID, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+userID)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal %s %s response %q: %v", method, target, rec.Body.String(), err)
	}
	return rec, out
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return v.UTC()
}

func TestRouter_Healthz(t *testing.T) {
	srv := newTestServer(t, mustTime(t, "2026-10-17T09:00:00Z"), nil)

	rec, body := srv.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body.Data["status"] != "ok" {
		t.Fatalf("unexpected health payload: %+v", body.Data)
	}
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	srv := newTestServer(t, mustTime(t, "2026-10-17T09:00:00Z"), nil)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty token", header: "Bearer   "},
		{name: "rejected token", header: "Bearer bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/selections/current?league_id="+memory.LeagueIDPaddock2026, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSelectionRoutes_SaveThenGetCurrent(t *testing.T) {
	srv := newTestServer(t, mustTime(t, "2026-10-17T09:00:00Z"), nil)

	rec, body := srv.do(t, http.MethodGet, "/v1/selections/current?leagueId="+memory.LeagueIDPaddock2026, memory.UserIDChen, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if body.Data["exists"] != false {
		t.Fatalf("expected no stored selection yet, got %+v", body.Data)
	}

	payload := `{"league_id":"` + memory.LeagueIDPaddock2026 + `","main_driver":"lando norris","reserve_driver":"Max Verstappen","team":"mclaren"}`
	rec, body = srv.do(t, http.MethodPost, "/v1/selections/save", memory.UserIDChen, payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if body.Data["mainDriver"] != "Lando Norris" || body.Data["team"] != "McLaren" {
		t.Fatalf("expected canonical picks, got %+v", body.Data)
	}
	if body.Data["status"] != "user_submitted" {
		t.Fatalf("expected user_submitted status, got %v", body.Data["status"])
	}
	if round, _ := body.Data["round"].(float64); round != 19 {
		t.Fatalf("expected round 19, got %v", body.Data["round"])
	}

	rec, body = srv.do(t, http.MethodGet, "/v1/selections/current?league_id="+memory.LeagueIDPaddock2026, memory.UserIDChen, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body.Data["exists"] != true || body.Data["locked"] != false {
		t.Fatalf("expected stored unlocked selection, got %+v", body.Data)
	}

	rec, body = srv.do(t, http.MethodGet, "/v1/selections/used?leagueId="+memory.LeagueIDPaddock2026, memory.UserIDChen, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	drivers, _ := body.Data["drivers"].([]any)
	if len(drivers) != 2 {
		t.Fatalf("expected two used drivers, got %+v", body.Data["drivers"])
	}
}

func TestSelectionRoutes_ErrorMapping(t *testing.T) {
	srv := newTestServer(t, mustTime(t, "2026-10-17T09:00:00Z"), nil)

	tests := []struct {
		name       string
		method     string
		target     string
		userID     string
		body       string
		wantStatus int
		wantReason string
	}{
		{
			name:       "missing league id",
			method:     http.MethodGet,
			target:     "/v1/selections/current",
			userID:     memory.UserIDChen,
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidInput",
		},
		{
			name:       "bad round",
			method:     http.MethodGet,
			target:     "/v1/selections/current?league_id=" + memory.LeagueIDPaddock2026 + "&round=zero",
			userID:     memory.UserIDChen,
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidInput",
		},
		{
			name:       "unknown league",
			method:     http.MethodGet,
			target:     "/v1/selections/current?league_id=nope",
			userID:     memory.UserIDChen,
			wantStatus: http.StatusNotFound,
			wantReason: "notFound",
		},
		{
			name:       "unknown field",
			method:     http.MethodPost,
			target:     "/v1/selections/save",
			userID:     memory.UserIDChen,
			body:       `{"league_id":"x","main_driver":"a","reserve_driver":"b","team":"c","extra":1}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidInput",
		},
		{
			name:       "duplicate driver",
			method:     http.MethodPost,
			target:     "/v1/selections/save",
			userID:     memory.UserIDChen,
			body:       `{"league_id":"` + memory.LeagueIDPaddock2026 + `","main_driver":"Lando Norris","reserve_driver":"NOR","team":"McLaren"}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "duplicateDriver",
		},
		{
			name:       "unknown driver",
			method:     http.MethodPost,
			target:     "/v1/selections/save",
			userID:     memory.UserIDChen,
			body:       `{"league_id":"` + memory.LeagueIDPaddock2026 + `","main_driver":"Ayrton Senna","reserve_driver":"Max Verstappen","team":"McLaren"}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidSelection",
		},
		{
			name:       "override by member",
			method:     http.MethodPost,
			target:     "/v1/selections/admin/override",
			userID:     memory.UserIDChen,
			body:       `{"league_id":"` + memory.LeagueIDPaddock2026 + `","user_id":"` + memory.UserIDDara + `","round":18,"main_driver":"Lando Norris","reserve_driver":"Max Verstappen","team":"McLaren"}`,
			wantStatus: http.StatusForbidden,
			wantReason: "forbidden",
		},
		{
			name:       "override without race",
			method:     http.MethodPost,
			target:     "/v1/selections/admin/override",
			userID:     memory.UserIDAlice,
			body:       `{"league_id":"` + memory.LeagueIDPaddock2026 + `","user_id":"` + memory.UserIDDara + `","main_driver":"Lando Norris","reserve_driver":"Max Verstappen","team":"McLaren"}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidInput",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := srv.do(t, tt.method, tt.target, tt.userID, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d body=%s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if body.Error == nil || len(body.Error.Errors) == 0 {
				t.Fatalf("expected error body, got %s", rec.Body.String())
			}
			if got := body.Error.Errors[0].Reason; got != tt.wantReason {
				t.Fatalf("expected reason %q, got %q", tt.wantReason, got)
			}
		})
	}
}

func TestSelectionRoutes_AdminOverride(t *testing.T) {
	srv := newTestServer(t, mustTime(t, "2026-10-17T09:00:00Z"), nil)

	payload := `{"league_id":"` + memory.LeagueIDPaddock2026 + `","user_id":"` + memory.UserIDDara + `","round":18,"main_driver":"George Russell","reserve_driver":"Oscar Piastri","team":"Mercedes","notes":"missed deadline"}`
	rec, body := srv.do(t, http.MethodPost, "/v1/selections/admin/override", memory.UserIDBruno, payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if body.Data["status"] != "admin_assigned" || body.Data["isAdminAssigned"] != true {
		t.Fatalf("expected admin assigned selection, got %+v", body.Data)
	}
	if body.Data["assignedBy"] != memory.UserIDBruno {
		t.Fatalf("expected assignedBy %s, got %v", memory.UserIDBruno, body.Data["assignedBy"])
	}
	if body.Data["userId"] != memory.UserIDDara {
		t.Fatalf("expected target user %s, got %v", memory.UserIDDara, body.Data["userId"])
	}
}

func TestCardRoutes_SelectDeckReportsEveryViolation(t *testing.T) {
	srv := newTestServer(t, mustTime(t, "2026-03-01T09:00:00Z"), nil)

	payload := `{"driver_card_ids":["drv-double-points","drv-overtake-king","drv-pole-hunter"],"team_card_ids":["team-ghost"]}`
	rec, body := srv.do(t, http.MethodPost, "/v1/leagues/"+memory.LeagueIDPaddock2026+"/cards/select", memory.UserIDChen, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if body.Error == nil {
		t.Fatalf("expected error body")
	}

	var reasons []string
	for _, item := range body.Error.Errors {
		reasons = append(reasons, item.Reason)
		if item.Domain != "fantasy-racing" {
			t.Fatalf("unexpected error domain %q", item.Domain)
		}
	}
	want := []string{"invalidCard", "slotMismatch", "tierLimitExceeded"}
	if strings.Join(reasons, ",") != strings.Join(want, ",") {
		t.Fatalf("expected reasons %v, got %v", want, reasons)
	}
}

func TestCardRoutes_DeckAndActivationFlow(t *testing.T) {
	srv := newTestServer(t, mustTime(t, "2026-03-01T09:00:00Z"), nil)
	leaguePath := "/v1/leagues/" + memory.LeagueIDPaddock2026

	deck := `{"driver_card_ids":["drv-shadow","drv-mystery","drv-saboteur","drv-safe-hands","drv-pit-whisper"],"team_card_ids":["team-random","team-rivalry","team-reliability","team-upgrade-package"]}`
	rec, body := srv.do(t, http.MethodPost, leaguePath+"/cards/select", memory.UserIDChen, deck)
	if rec.Code != http.StatusOK {
		t.Fatalf("select deck: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if body.Data["complete"] != true {
		t.Fatalf("expected complete deck, got %+v", body.Data)
	}

	srv.clock.Set(mustTime(t, "2026-10-17T09:00:00Z"))

	rec, body = srv.do(t, http.MethodPost, leaguePath+"/cards/select", memory.UserIDChen, deck)
	if rec.Code != http.StatusBadRequest || body.Error.Errors[0].Reason != "deckLocked" {
		t.Fatalf("expected deckLocked after the season started, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec, body = srv.do(t, http.MethodGet, leaguePath+"/cards/deck", memory.UserIDChen, "")
	if rec.Code != http.StatusOK || body.Data["locked"] != true {
		t.Fatalf("expected locked deck view, got %d body=%s", rec.Code, rec.Body.String())
	}

	save := `{"league_id":"` + memory.LeagueIDPaddock2026 + `","main_driver":"Oscar Piastri","reserve_driver":"Charles Leclerc","team":"Ferrari"}`
	rec, body = srv.do(t, http.MethodPost, "/v1/selections/save", memory.UserIDChen, save)
	if rec.Code != http.StatusOK {
		t.Fatalf("save selection: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	selectionID, _ := body.Data["id"].(string)
	if selectionID == "" {
		t.Fatalf("expected selection id, got %+v", body.Data)
	}

	cardsPath := "/v1/selections/" + selectionID + "/cards"
	rec, body = srv.do(t, http.MethodPost, cardsPath, memory.UserIDChen, `{"driver_card_id":"drv-shadow"}`)
	if rec.Code != http.StatusBadRequest || body.Error.Errors[0].Reason != "targetRequired" {
		t.Fatalf("expected targetRequired, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec, body = srv.do(t, http.MethodPost, cardsPath, memory.UserIDChen, `{"driver_card_id":"drv-safe-hands"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("activate: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if body.Data["exists"] != true {
		t.Fatalf("expected stored activation, got %+v", body.Data)
	}

	rec, body = srv.do(t, http.MethodGet, cardsPath, memory.UserIDDara, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("league member read: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	driverCard, _ := body.Data["driverCard"].(map[string]any)
	if driverCard["id"] != "drv-safe-hands" {
		t.Fatalf("expected drv-safe-hands, got %+v", body.Data["driverCard"])
	}

	rec, body = srv.do(t, http.MethodPost, cardsPath, memory.UserIDDara, `{"driver_card_id":"drv-safe-hands"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another user's selection, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec, body = srv.do(t, http.MethodGet, leaguePath+"/cards", memory.UserIDChen, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list cards: expected 200, got %d", rec.Code)
	}
}

func TestCalendarRoutes_ListLeagueRaces(t *testing.T) {
	srv := newTestServer(t, mustTime(t, "2026-10-17T09:00:00Z"), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/leagues/"+memory.LeagueIDPaddock2026+"/races", nil)
	req.Header.Set("Authorization", "Bearer "+memory.UserIDChen)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data []struct {
			Round  int  `json:"round"`
			Locked bool `json:"locked"`
			IsNext bool `json:"isNext"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Data) != 24 {
		t.Fatalf("expected 24 races, got %d", len(body.Data))
	}
	for _, item := range body.Data {
		if item.Round == 18 && !item.Locked {
			t.Fatalf("expected round 18 to be locked")
		}
		if item.IsNext && item.Round != 19 {
			t.Fatalf("expected round 19 to be next, got %d", item.Round)
		}
	}
}

func TestRateLimit_RejectsBurstOverflow(t *testing.T) {
	srv := newTestServer(t, mustTime(t, "2026-10-17T09:00:00Z"), NewIPRateLimiter(0.001, 1))
	target := "/v1/leagues/" + memory.LeagueIDPaddock2026 + "/races"

	rec, _ := srv.do(t, http.MethodGet, target, memory.UserIDChen, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	rec, body := srv.do(t, http.MethodGet, target, memory.UserIDChen, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if body.Error == nil || body.Error.Status != "RESOURCE_EXHAUSTED" {
		t.Fatalf("unexpected error body %s", rec.Body.String())
	}

	rec, _ = srv.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health checks bypass the limiter, got %d", rec.Code)
	}
}
