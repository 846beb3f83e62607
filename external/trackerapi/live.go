package trackerapi

import (
	"bufio"
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/HeXi037/cross-sport-tracker/internal/platform/logging"
	"github.com/HeXi037/cross-sport-tracker/internal/usecase"
)

const (
	defaultPollInterval      = 5 * time.Second
	defaultReconnectInterval = 30 * time.Second
	defaultPollTimeout       = 4 * time.Second
	maxStreamLineSize        = 1 << 20

	// pollFailureThreshold is how many consecutive poll failures flip the
	// reported connection state to offline.
	pollFailureThreshold = 3
)

type LiveFeedConfig struct {
	BaseURL           string
	Token             string
	Logger            *logging.Logger
	PollInterval      time.Duration
	ReconnectInterval time.Duration
	PollTimeout       time.Duration

	// StreamClient must have no timeout; streams stay open indefinitely.
	StreamClient *http.Client
}

// LiveFeed delivers live match messages, preferring the push stream and
// degrading to summary polling when the stream cannot be held open. It
// keeps retrying the stream while polling, so a recovered upstream moves
// subscribers back to push without re-subscribing.
type LiveFeed struct {
	baseURL           string
	token             string
	logger            *logging.Logger
	pollInterval      time.Duration
	reconnectInterval time.Duration
	pollTimeout       time.Duration

	streamClient *http.Client
	poller       *fasthttp.Client

	state atomic.Value // usecase.ConnectionState
}

func NewLiveFeed(cfg LiveFeedConfig) *LiveFeed {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	streamClient := cfg.StreamClient
	if streamClient == nil {
		streamClient = &http.Client{}
	}

	feed := &LiveFeed{
		baseURL:           strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:             strings.TrimSpace(cfg.Token),
		logger:            logger,
		pollInterval:      durationOrDefault(cfg.PollInterval, defaultPollInterval),
		reconnectInterval: durationOrDefault(cfg.ReconnectInterval, defaultReconnectInterval),
		pollTimeout:       durationOrDefault(cfg.PollTimeout, defaultPollTimeout),
		streamClient:      streamClient,
		poller:            &fasthttp.Client{Name: "cross-sport-tracker-gateway"},
	}
	if feed.baseURL == "" {
		feed.baseURL = defaultBaseURL
	}
	feed.state.Store(usecase.ConnectionOffline)
	return feed
}

// Subscribe starts the stream/poll loop for one match. The returned
// channel closes when ctx is cancelled.
func (f *LiveFeed) Subscribe(ctx context.Context, matchID string) (<-chan usecase.LiveMessage, error) {
	if strings.TrimSpace(matchID) == "" {
		return nil, crerr.New("match id is required")
	}

	out := make(chan usecase.LiveMessage, 16)
	go f.run(ctx, matchID, out)
	return out, nil
}

func (f *LiveFeed) State() usecase.ConnectionState {
	return f.state.Load().(usecase.ConnectionState)
}

func (f *LiveFeed) run(ctx context.Context, matchID string, out chan<- usecase.LiveMessage) {
	defer close(out)

	for {
		if err := f.streamOnce(ctx, matchID, out); err != nil && ctx.Err() == nil {
			f.logger.WarnContext(ctx, "live stream interrupted, falling back to polling",
				"match_id", matchID, "error", err)
		}
		if ctx.Err() != nil {
			return
		}

		f.state.Store(usecase.ConnectionFallbackPolling)
		f.pollUntilReconnect(ctx, matchID, out)
		if ctx.Err() != nil {
			return
		}
	}
}

// streamOnce holds the ND-JSON stream open and forwards each decoded
// frame. Returning nil means the server closed the stream cleanly.
func (f *LiveFeed) streamOnce(ctx context.Context, matchID string, out chan<- usecase.LiveMessage) error {
	streamURL := f.baseURL + "/v0/matches/" + url.PathEscape(matchID) + "/stream"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return crerr.Wrap(err, "build stream request")
	}
	req.Header.Set("Accept", "application/x-ndjson")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.streamClient.Do(req)
	if err != nil {
		return crerr.Wrap(err, "open stream")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return crerr.Newf("stream status=%d", resp.StatusCode)
	}

	f.state.Store(usecase.ConnectionConnected)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		msg, err := decodeLiveMessage([]byte(line))
		if err != nil {
			f.logger.WarnContext(ctx, "skipping malformed stream frame", "match_id", matchID, "error", err)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- msg:
		}
	}
	return scanner.Err()
}

// pollUntilReconnect serves summaries over polling for one reconnect
// window, then returns so the caller can retry the stream.
func (f *LiveFeed) pollUntilReconnect(ctx context.Context, matchID string, out chan<- usecase.LiveMessage) {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(f.reconnectInterval)
	defer deadline.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
			msg, err := f.pollOnce(matchID)
			if err != nil {
				failures++
				if failures >= pollFailureThreshold {
					f.state.Store(usecase.ConnectionOffline)
				}
				f.logger.WarnContext(ctx, "live summary poll failed", "match_id", matchID, "error", err)
				continue
			}
			failures = 0
			f.state.Store(usecase.ConnectionFallbackPolling)

			select {
			case <-ctx.Done():
				return
			case out <- msg:
			}
		}
	}
}

func (f *LiveFeed) pollOnce(matchID string) (usecase.LiveMessage, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.baseURL + "/v0/matches/" + url.PathEscape(matchID) + "/summary")
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	if err := f.poller.DoTimeout(req, resp, f.pollTimeout); err != nil {
		return usecase.LiveMessage{}, crerr.Wrap(err, "poll summary")
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return usecase.LiveMessage{}, crerr.Newf("poll summary status=%d", resp.StatusCode())
	}

	body := append([]byte(nil), resp.Body()...)
	return decodePollBody(body)
}

// decodePollBody accepts both poll response shapes: a live frame with
// summary/status keys and a bare summary object.
func decodePollBody(raw []byte) (usecase.LiveMessage, error) {
	msg, err := decodeLiveMessage(raw)
	if err != nil {
		return usecase.LiveMessage{}, err
	}
	if msg.Summary == nil && msg.Event == nil && msg.Status == "" {
		var obj map[string]any
		if err := sonic.Unmarshal(raw, &obj); err == nil && len(obj) > 0 {
			msg.Summary = decodeSummary(obj)
		}
	}
	return msg, nil
}

func durationOrDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
