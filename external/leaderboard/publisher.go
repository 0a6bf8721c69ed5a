// Package leaderboard asks the leaderboard service to recompute league
// standings by publishing a refresh job through QStash.
package leaderboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
	"github.com/riskibarqy/fantasy-racing/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

const defaultRefreshPath = "/internal/jobs/leaderboard/refresh"

var errQStashTransient = crerr.New("qstash transient failure")

type PublisherConfig struct {
	HTTPClient       *http.Client
	BaseURL          string
	Token            string
	TargetBaseURL    string
	RefreshPath      string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
	Logger           *logging.Logger
}

// Publisher implements usecase.LeaderboardUpdater. Refreshes for the same
// league and season within one minute share a deduplication id, so a burst of
// saves produces a single job.
type Publisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	refreshPath      string
	retries          int
	internalJobToken string
	breaker          *resilience.CircuitBreaker
	logger           *logging.Logger
	now              func() time.Time
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid LEADERBOARD_TARGET_BASE_URL")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	refreshPath := "/" + strings.TrimLeft(strings.TrimSpace(cfg.RefreshPath), "/")
	if refreshPath == "/" {
		refreshPath = defaultRefreshPath
	}

	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("qstash circuit breaker state changed", "from", string(from), "to", string(to))
	})

	return &Publisher{
		client:           client,
		baseURL:          baseURL,
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    targetBaseURL,
		refreshPath:      refreshPath,
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		breaker:          breaker,
		logger:           logger,
		now:              time.Now,
	}, nil
}

type refreshPayload struct {
	LeagueID    string    `json:"league_id"`
	Season      int       `json:"season"`
	RequestedAt time.Time `json:"requested_at"`
}

func (p *Publisher) RefreshLeague(ctx context.Context, leagueID string, season int) error {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return fmt.Errorf("%w: league id is required", usecase.ErrInvalidInput)
	}

	now := p.now().UTC()
	payload := refreshPayload{LeagueID: leagueID, Season: season, RequestedAt: now}
	dedupID := deduplicationID(leagueID, season, now)

	err := p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.publish(ctx, payload, dedupID)
	}, isQStashCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("%w: leaderboard queue is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		if isQStashCircuitFailure(err) {
			return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return err
	}
	return nil
}

type header struct {
	name   string
	value  string
	secret bool
}

func (p *Publisher) publishHeaders(dedupID string) []header {
	headers := []header{
		{name: "Authorization", value: "Bearer " + p.token, secret: true},
		{name: "Content-Type", value: "application/json"},
		{name: "Upstash-Method", value: http.MethodPost},
		{name: "Upstash-Deduplication-Id", value: dedupID},
	}
	if p.retries > 0 {
		headers = append(headers, header{name: "Upstash-Retries", value: strconv.Itoa(p.retries)})
	}
	if p.internalJobToken != "" {
		headers = append(headers, header{name: "Upstash-Forward-X-Internal-Job-Token", value: p.internalJobToken, secret: true})
	}
	return headers
}

func (p *Publisher) publish(ctx context.Context, payload refreshPayload, dedupID string) error {
	targetURL := p.targetBaseURL + p.refreshPath
	publishURL := p.baseURL + "/v2/publish/" + targetURL

	body, err := jsoniter.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal refresh payload")
	}
	headers := p.publishHeaders(dedupID)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.deduplication_id", dedupID),
			attribute.String("qstash.request_curl_preview", curlPreview(publishURL, headers, body)),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request", "target_url", targetURL, "deduplication_id", dedupID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	for _, h := range headers {
		req.Header.Set(h.name, h.value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrapf(err, "publish leaderboard refresh target_url=%s", targetURL), errQStashTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		callErr := crerr.Newf("publish leaderboard refresh status=%d target_url=%s body=%s", resp.StatusCode, targetURL, strings.TrimSpace(string(raw)))
		if isRetryableStatus(resp.StatusCode) {
			return crerr.Mark(callErr, errQStashTransient)
		}
		return callErr
	}

	p.logger.InfoContext(ctx, "leaderboard refresh published", "league_id", payload.LeagueID, "season", payload.Season, "deduplication_id", dedupID)
	return nil
}

func deduplicationID(leagueID string, season int, at time.Time) string {
	return "leaderboard-" + leagueID + "-" + strconv.Itoa(season) + "-" + at.Truncate(time.Minute).Format("200601021504")
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

const maxPreviewBody = 4096

// curlPreview renders an equivalent curl command with secret headers masked.
func curlPreview(publishURL string, headers []header, body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST ")
	_, _ = buf.WriteString(shellQuote(publishURL))
	for _, h := range headers {
		value := h.value
		if h.secret {
			value = maskSecret(value)
		}
		_, _ = buf.WriteString(" -H ")
		_, _ = buf.WriteString(shellQuote(h.name + ": " + value))
	}
	if len(body) > maxPreviewBody {
		body = append(body[:maxPreviewBody:maxPreviewBody], "...(truncated)"...)
	}
	_, _ = buf.WriteString(" -d ")
	_, _ = buf.WriteString(shellQuote(string(body)))
	return buf.String()
}

// maskSecret keeps an auth scheme prefix such as "Bearer" and hides the rest.
func maskSecret(value string) string {
	if scheme, _, ok := strings.Cut(value, " "); ok {
		return scheme + " ***"
	}
	return "***"
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func isQStashCircuitFailure(err error) bool {
	return crerr.Is(err, errQStashTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
