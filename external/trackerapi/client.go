package trackerapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/HeXi037/cross-sport-tracker/internal/domain/leaderboard"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/match"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/player"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/sport"
	"github.com/HeXi037/cross-sport-tracker/internal/domain/tournament"
	"github.com/HeXi037/cross-sport-tracker/internal/platform/logging"
	"github.com/HeXi037/cross-sport-tracker/internal/platform/resilience"
	"github.com/HeXi037/cross-sport-tracker/internal/usecase"
)

const (
	defaultBaseURL  = "http://localhost:8000/api"
	maxResponseSize = 6 << 20

	headerLimit      = "X-Limit"
	headerHasMore    = "X-Has-More"
	headerNextOffset = "X-Next-Offset"
)

var errTrackerTransient = crerr.New("tracker transient failure")

// CircuitBreakerConfig tunes the breaker guarding tracker calls. Zero
// values fall back to a profile sized for this upstream: with the
// default two retries a single user action can burn three attempts, so
// the threshold counts failed requests, not attempts, and the open
// window roughly matches the tracker's observed recovery time.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 15 * time.Second
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = 2
	}
	return c
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker CircuitBreakerConfig
}

// Client talks to the upstream cross-sport-tracker REST API. It
// implements the usecase MatchLister, ReferenceReader and
// TournamentWriter contracts.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := cfg.CircuitBreaker.withDefaults()

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// ListMatches fetches one page of the match list. The body is either a
// bare JSON array or an {"items": [...]} envelope; pagination metadata
// travels in response headers.
func (c *Client) ListMatches(ctx context.Context, q usecase.MatchQuery) (usecase.MatchPage, error) {
	values := url.Values{}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Sport != "" {
		values.Set("sport", q.Sport)
	}

	resp, err := c.getJSON(ctx, "/v0/matches", values)
	if err != nil {
		return usecase.MatchPage{}, err
	}

	var rows []matchRow
	if err := decodeListBody(resp.body, &rows); err != nil {
		return usecase.MatchPage{}, crerr.Wrap(err, "decode match list")
	}

	items := make([]match.Summary, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}

	return usecase.MatchPage{
		Items:  items,
		Cursor: cursorFromHeaders(resp.header, q.Limit),
	}, nil
}

func (c *Client) ListPlayers(ctx context.Context) ([]player.Player, error) {
	resp, err := c.getJSON(ctx, "/v0/players", nil)
	if err != nil {
		return nil, err
	}

	var rows []playerRow
	if err := decodeListBody(resp.body, &rows); err != nil {
		return nil, crerr.Wrap(err, "decode player list")
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (c *Client) ListSports(ctx context.Context) ([]sport.Sport, error) {
	resp, err := c.getJSON(ctx, "/v0/sports", nil)
	if err != nil {
		return nil, err
	}

	var rows []sportRow
	if err := decodeListBody(resp.body, &rows); err != nil {
		return nil, crerr.Wrap(err, "decode sport list")
	}

	out := make([]sport.Sport, 0, len(rows))
	for _, row := range rows {
		out = append(out, sport.Sport{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (c *Client) ListLeaderboard(ctx context.Context, sportID string) ([]leaderboard.Entry, error) {
	values := url.Values{}
	values.Set("sport", sportID)

	resp, err := c.getJSON(ctx, "/v0/leaderboards", values)
	if err != nil {
		return nil, err
	}

	var rows []leaderboardRow
	if err := decodeListBody(resp.body, &rows); err != nil {
		return nil, crerr.Wrap(err, "decode leaderboard")
	}

	out := make([]leaderboard.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (c *Client) CreateTournament(ctx context.Context, t tournament.Tournament) (tournament.Tournament, error) {
	body, err := encodeTournament(t)
	if err != nil {
		return tournament.Tournament{}, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/v0/tournaments", nil, body)
	if err != nil {
		return tournament.Tournament{}, err
	}
	return decodeTournamentBody(resp.body)
}

func (c *Client) GetTournament(ctx context.Context, id string) (tournament.Tournament, error) {
	resp, err := c.getJSON(ctx, "/v0/tournaments/"+url.PathEscape(id), nil)
	if err != nil {
		return tournament.Tournament{}, err
	}
	return decodeTournamentBody(resp.body)
}

func (c *Client) UpdateTournament(ctx context.Context, t tournament.Tournament) (tournament.Tournament, error) {
	body, err := encodeTournament(t)
	if err != nil {
		return tournament.Tournament{}, err
	}

	resp, err := c.do(ctx, http.MethodPatch, "/v0/tournaments/"+url.PathEscape(t.ID), nil, body)
	if err != nil {
		return tournament.Tournament{}, err
	}
	return decodeTournamentBody(resp.body)
}

func (c *Client) DeleteTournament(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/v0/tournaments/"+url.PathEscape(id), nil, nil)
	return err
}

type apiResponse struct {
	status int
	body   []byte
	header http.Header
}

// getJSON funnels GET requests through the single-flight group so
// identical concurrent reads share one round trip.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (apiResponse, error) {
	key := path
	if query != nil {
		key += "?" + query.Encode()
	}

	out, err, _ := c.flight.Do(key, func() (any, error) {
		return c.do(ctx, http.MethodGet, path, query, nil)
	})
	if err != nil {
		return apiResponse{}, err
	}

	resp, ok := out.(apiResponse)
	if !ok {
		return apiResponse{}, crerr.Newf("unexpected response payload type %T", out)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) (apiResponse, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "tracker circuit breaker rejected request", "state", c.breaker.State())
			return apiResponse{}, fmt.Errorf("%w: tracker api is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	resp, err := c.executeRequest(ctx, method, fullURL, body)
	if c.circuitEnabled {
		if err != nil && isCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return resp, err
}

func (c *Client) executeRequest(ctx context.Context, method, fullURL string, body []byte) (apiResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := c.buildRequest(ctx, method, fullURL, body)
		if err != nil {
			return apiResponse{}, crerr.Wrap(err, "build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errTrackerTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTrackerTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return apiResponse{status: resp.StatusCode, body: raw, header: resp.Header}, nil
			default:
				lastErr = statusError(resp.StatusCode, raw)
				if !isRetryableStatus(resp.StatusCode) {
					return apiResponse{}, lastErr
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return apiResponse{}, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("tracker request failed")
	}
	c.logger.WarnContext(ctx, "tracker request failed", "url", fullURL, "method", method, "error", lastErr)
	return apiResponse{}, lastErr
}

func (c *Client) buildRequest(ctx context.Context, method, fullURL string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = strings.NewReader(string(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// statusError maps upstream status codes onto the usecase taxonomy:
// auth failures are surfaced distinctly and never retried, transient
// statuses wrap the retryable sentinel.
func statusError(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: tracker status=%d", usecase.ErrForbidden, status)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: tracker status=%d", usecase.ErrNotFound, status)
	case isRetryableStatus(status):
		return fmt.Errorf("%w: tracker status=%d body=%s", errTrackerTransient, status, abbreviateBody(body))
	default:
		return crerr.Newf("tracker status=%d body=%s", status, abbreviateBody(body))
	}
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errTrackerTransient)
}

func cursorFromHeaders(header http.Header, requestedLimit int) usecase.PageCursor {
	cursor := usecase.PageCursor{Limit: requestedLimit}

	if v := strings.TrimSpace(header.Get(headerLimit)); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			cursor.Limit = limit
		}
	}
	if v := strings.TrimSpace(header.Get(headerHasMore)); v != "" {
		cursor.HasMore = strings.EqualFold(v, "true") || v == "1"
	}
	if v := strings.TrimSpace(header.Get(headerNextOffset)); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			cursor.NextOffset = &offset
		}
	}
	return cursor
}

func encodeTournament(t tournament.Tournament) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(tournamentRowFromDomain(t)); err != nil {
		return nil, crerr.Wrap(err, "encode tournament")
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func decodeTournamentBody(body []byte) (tournament.Tournament, error) {
	var row tournamentRow
	if err := sonic.Unmarshal(body, &row); err != nil {
		return tournament.Tournament{}, crerr.Wrap(err, "decode tournament")
	}
	return row.toDomain(), nil
}

// decodeListBody accepts both upstream list shapes: a bare array and an
// {"items": [...]} envelope. The union is normalized exactly once here.
func decodeListBody[T any](body []byte, out *[]T) error {
	var envelope struct {
		Items []T `json:"items"`
	}
	if err := sonic.Unmarshal(body, &envelope); err == nil && envelope.Items != nil {
		*out = envelope.Items
		return nil
	}

	return sonic.Unmarshal(body, out)
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

func sanitizeSensitiveText(text, token string) string {
	if token == "" {
		return text
	}
	return strings.ReplaceAll(text, token, "[redacted]")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
