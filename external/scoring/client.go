// Package scoring calls the external scoring service that turns a finalized
// (selection, race result, card activation) triple into points.
package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
	"github.com/riskibarqy/fantasy-racing/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

const (
	defaultScorePath = "/v1/score"
	defaultTimeout   = 5 * time.Second
)

var errScoringTransient = crerr.New("scoring transient failure")

type ClientConfig struct {
	BaseURL        string
	ScorePath      string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client implements usecase.ScoringGateway.
type Client struct {
	http       *fasthttp.Client
	scoreURL   string
	token      string
	timeout    time.Duration
	maxRetries int
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
	backoff    func(attempt int) time.Duration
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, crerr.Newf("scoring base url %q must be http or https", cfg.BaseURL)
	}
	path := "/" + strings.TrimLeft(strings.TrimSpace(cfg.ScorePath), "/")
	if path == "/" {
		path = defaultScorePath
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("scoring circuit breaker state changed", "from", string(from), "to", string(to))
	})

	return &Client{
		http: &fasthttp.Client{
			Name:                "fantasy-racing-scoring",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		scoreURL:   baseURL + path,
		token:      strings.TrimSpace(cfg.Token),
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		breaker:    breaker,
		logger:     logger,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * 200 * time.Millisecond
		},
	}, nil
}

func (c *Client) ScoreSelection(ctx context.Context, req usecase.ScoreRequest) (selection.PointBreakdown, error) {
	body, err := sonic.Marshal(newScoreRequestBody(req))
	if err != nil {
		return selection.PointBreakdown{}, crerr.Wrap(err, "marshal score request")
	}

	var raw []byte
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		raw, callErr = c.postWithRetry(ctx, body)
		return callErr
	}, isCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "scoring circuit breaker rejected request", "state", c.breaker.State())
			return selection.PointBreakdown{}, fmt.Errorf("%w: scoring service is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		if isCircuitFailure(err) {
			return selection.PointBreakdown{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return selection.PointBreakdown{}, err
	}

	var decoded scoreResponseBody
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return selection.PointBreakdown{}, crerr.Wrap(err, "decode score response")
	}
	return decoded.breakdown(), nil
}

func (c *Client) postWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.post(ctx, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !isCircuitFailure(err) || attempt == c.maxRetries {
			break
		}

		timer := time.NewTimer(c.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "scoring request failed", "url", c.scoreURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.scoreURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.SetBodyRaw(body)

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "send score request"), errScoringTransient)
	}

	status := resp.StatusCode()
	raw := append([]byte(nil), resp.Body()...)
	switch {
	case status >= 200 && status < 300:
		return raw, nil
	case isRetryableStatus(status):
		return nil, crerr.Mark(crerr.Newf("scoring status=%d body=%s", status, abbreviate(raw)), errScoringTransient)
	default:
		return nil, crerr.Newf("scoring status=%d body=%s", status, abbreviate(raw))
	}
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errScoringTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}

func abbreviate(raw []byte) string {
	const limit = 512
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
