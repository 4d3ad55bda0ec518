package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ecombuddha/console-core/internal/logging"
	"github.com/ecombuddha/console-core/internal/metrics"
	"github.com/ecombuddha/console-core/internal/session"
)

// HeaderUserUUID carries the operator's subject ID on every call made
// while a session exists.
const HeaderUserUUID = "X-User-UUID"

// DefaultTimeout is the hard per-call deadline unless overridden.
const DefaultTimeout = 30 * time.Second

const (
	breakerThreshold = 5
	breakerCooldown  = 15 * time.Second
)

// Sessions is the slice of the session manager the gateway needs: a read
// of the current identity per call, and the forced-logout trigger on 401.
type Sessions interface {
	Current() (session.Identity, bool)
	ForceLogout(reason string)
}

// Client performs all network I/O against the backend. Identity state is
// read through Sessions and never mutated here beyond triggering logout.
type Client struct {
	resty    *resty.Client
	sessions Sessions
	limiter  *rate.Limiter
	breaker  *breaker
	metrics  *metrics.Metrics
	log      *logging.Logger
	timeout  time.Duration

	mu       sync.Mutex
	inflight map[string]*flight
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics wires Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout overrides the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit caps outbound requests per second. Zero means unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
		}
	}
}

// New creates a gateway client for the given backend base address.
func New(baseURL string, sessions Sessions, opts ...Option) *Client {
	restyClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "ecombuddha-console/1.0")

	c := &Client{
		resty:    restyClient,
		sessions: sessions,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		breaker:  newBreaker(breakerThreshold, breakerCooldown),
		log:      logging.NewNop(),
		timeout:  DefaultTimeout,
		inflight: make(map[string]*flight),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallOption adjusts a single call.
type CallOption func(*callOptions)

type callOptions struct {
	timeout        time.Duration
	noForcedLogout bool
}

// CallTimeout overrides the timeout for one call.
func CallTimeout(d time.Duration) CallOption {
	return func(o *callOptions) { o.timeout = d }
}

// WithoutForcedLogout keeps a 401 on this call from triggering the
// forced-logout sequence. The login call needs this: a rejected
// credential means "wrong password", not "session expired", and must
// not destroy the session the operator already has.
func WithoutForcedLogout() CallOption {
	return func(o *callOptions) { o.noForcedLogout = true }
}

// Call issues a request and returns the response payload verbatim. Schema
// validation is the caller's concern; this layer is transport only.
//
// GETs with identical endpoint and params collapse into one in-flight
// network call; all joined callers observe the same settled result. The
// body argument is ignored for GETs: the dedup key covers method,
// endpoint and params only, and none of the consumed endpoints reads a
// GET body. Non-idempotent methods always execute fresh, because their
// side effects must not be silently dropped.
func (c *Client) Call(ctx context.Context, method, endpoint string, params map[string]string, body interface{}, opts ...CallOption) (json.RawMessage, error) {
	o := callOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&o)
	}

	if method != http.MethodGet {
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		return c.do(callCtx, method, endpoint, params, body, o)
	}

	key := flightKey(method, endpoint, params)

	c.mu.Lock()
	if f, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.DedupJoined.Inc()
		}
		c.log.Debug("joined in-flight request", zap.String("key", key))
		return f.wait(ctx)
	}
	f := newFlight(key, time.Now())
	c.inflight[key] = f
	c.mu.Unlock()

	// The shared call runs on its own context so one subscriber's
	// cancellation cannot abort it for the others. Joiners share the
	// original call's timeout rather than attaching their own.
	go func() {
		callCtx, cancel := context.WithTimeout(context.Background(), o.timeout)
		defer cancel()

		payload, err := c.do(callCtx, method, endpoint, params, nil, o)

		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()

		f.settle(payload, err)
	}()

	return f.wait(ctx)
}

// do executes one network call on ctx and normalizes the outcome.
func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string, body interface{}, o callOptions) (json.RawMessage, error) {
	started := time.Now()
	payload, err := c.roundTrip(ctx, method, endpoint, params, body, o)

	if c.metrics != nil {
		c.metrics.RequestDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
		c.metrics.RequestsTotal.WithLabelValues(method, outcome(err)).Inc()
	}
	return payload, err
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, params map[string]string, body interface{}, o callOptions) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.transportError(err)
	}

	if !c.breaker.allow() {
		return nil, &NetworkError{Detail: "backend unreachable, requests suspended"}
	}

	if c.metrics != nil {
		c.metrics.InFlight.Inc()
		defer c.metrics.InFlight.Dec()
	}

	req := c.resty.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	if identity, ok := c.sessions.Current(); ok {
		req.SetHeader(HeaderUserUUID, identity.SubjectID)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		terr := c.transportError(err)
		if !errors.Is(terr, context.Canceled) {
			c.breaker.record(false)
		}
		c.log.Warn("request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(terr))
		return nil, terr
	}
	c.breaker.record(true)

	status := resp.StatusCode()
	raw := resp.Body()

	switch {
	case status == http.StatusUnauthorized:
		if !o.noForcedLogout {
			c.sessions.ForceLogout("session expired")
			if c.metrics != nil {
				c.metrics.ForcedLogouts.Inc()
			}
		}
		return nil, ErrUnauthorized

	case status >= 200 && status < 300:
		if len(raw) > 0 && !json.Valid(raw) {
			return nil, &NetworkError{Detail: "malformed response body"}
		}
		return json.RawMessage(raw), nil

	default:
		return nil, &RemoteError{Status: status, Message: remoteMessage(raw, status)}
	}
}

// transportError maps a transport failure onto the error taxonomy.
func (c *Client) transportError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return context.Canceled
	default:
		return &NetworkError{Detail: "transport failure", Err: err}
	}
}

// remoteMessage extracts a display message from an error response body,
// falling back to the status text.
func remoteMessage(raw []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return http.StatusText(status)
}

// outcome labels an error for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		return "remote_error"
	}
	return "network_error"
}
