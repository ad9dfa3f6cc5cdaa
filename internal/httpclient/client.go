package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"wiki_quiz_client/internal/config"
	"wiki_quiz_client/pkg/logger"
	"wiki_quiz_client/pkg/monitoring"
	"wiki_quiz_client/pkg/throttle"
	"wiki_quiz_client/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Client talks JSON to the quiz backend. Every call is a single attempt
// bounded by a timeout; it is safe for concurrent use.
type Client struct {
	http *http.Client

	mu      sync.RWMutex
	baseURL string
	timeout time.Duration
	limiter *throttle.Limiter
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func WithLimiter(l *throttle.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

func New(cfg config.APIConfig, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		baseURL: config.TrimBaseURL(cfg.BaseURL),
		timeout: cfg.Timeout,
		limiter: throttle.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()),
	}
	if c.timeout <= 0 {
		c.timeout = config.DefaultTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) SetBaseURL(u string) {
	c.mu.Lock()
	c.baseURL = config.TrimBaseURL(u)
	c.mu.Unlock()
}

func (c *Client) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = config.DefaultTimeout
	}
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

func (c *Client) SetLimiter(l *throttle.Limiter) {
	c.mu.Lock()
	c.limiter = l
	c.mu.Unlock()
}

type requestOptions struct {
	timeout time.Duration
	route   string
}

type RequestOption func(*requestOptions)

// WithTimeout overrides the client default for one call.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = d
	}
}

// WithRoute sets the low-cardinality label used for metrics and spans,
// e.g. "/quiz/{id}" instead of "/quiz/42".
func WithRoute(route string) RequestOption {
	return func(o *requestOptions) {
		o.route = route
	}
}

// Request sends body (if non-nil) as JSON to endpoint and returns the raw
// JSON payload. A 2xx response whose body is not JSON yields a nil payload
// and no error. Failures are always *Error.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any, opts ...RequestOption) (json.RawMessage, error) {
	c.mu.RLock()
	base, timeout, limiter := c.baseURL, c.timeout, c.limiter
	c.mu.RUnlock()

	ro := requestOptions{timeout: timeout, route: endpoint}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.timeout <= 0 {
		ro.timeout = timeout
	}

	ctx, span := tracing.Tracer.Start(ctx, method+" "+ro.route, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	reqCtx, cancel := context.WithTimeout(ctx, ro.timeout)
	defer cancel()

	started := time.Now()
	if err := limiter.Wait(reqCtx); err != nil {
		e := classify(reqCtx, err)
		if e.Message != MsgCancelled {
			// the limiter refuses early when the wait would outlast the deadline
			e = &Error{Kind: KindTimedOut, Message: MsgTimedOut, Err: err}
		}
		return nil, c.fail(span, method, ro.route, started, e)
	}

	requestID := uuid.NewString()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", ro.route),
		attribute.String("request.id", requestID),
	)

	payload, status, err := c.do(reqCtx, method, base+endpoint, body, requestID)
	if err != nil {
		return nil, c.fail(span, method, ro.route, started, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	monitoring.ObserveRequest(method, ro.route, status, started)

	if payload == nil {
		monitoring.MalformedResponses.WithLabelValues(ro.route).Inc()
		logger.Log.Warn("Response body is not JSON, using empty payload",
			zap.String("method", method),
			zap.String("route", ro.route),
			zap.Int("status", status),
			zap.String("request_id", requestID),
		)
	}

	logger.Log.Debug("Request completed",
		zap.String("method", method),
		zap.String("route", ro.route),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(started)),
		zap.String("request_id", requestID),
	)
	return payload, nil
}

func (c *Client) fail(span trace.Span, method, route string, started time.Time, e *Error) *Error {
	span.RecordError(e)
	span.SetStatus(codes.Error, e.Message)
	monitoring.ObserveRequest(method, route, e.Status, started)
	logger.Log.Warn("Request failed",
		zap.String("method", method),
		zap.String("route", route),
		zap.Stringer("kind", e.Kind),
		zap.Int("status", e.Status),
		zap.String("message", e.Message),
		zap.Duration("duration", time.Since(started)),
	)
	return e
}

func (c *Client) do(ctx context.Context, method, target string, body any, requestID string) (json.RawMessage, int, *Error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, &Error{Kind: KindHTTP, Message: "encode request body: " + err.Error(), Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, 0, &Error{Kind: KindHTTP, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	tracing.Inject(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, classify(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e := classify(ctx, err)
		e.Status = resp.StatusCode
		return nil, resp.StatusCode, e
	}

	payload := parsePayload(raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &Error{
			Kind:    KindHTTP,
			Status:  resp.StatusCode,
			Message: errorMessage(payload, resp.StatusCode),
		}
	}
	if payload == nil && len(bytes.TrimSpace(raw)) == 0 {
		// an empty body is a legitimate "nothing", not a malformed one
		return json.RawMessage("null"), resp.StatusCode, nil
	}
	return payload, resp.StatusCode, nil
}

// classify maps transport and context failures onto the error taxonomy.
func classify(ctx context.Context, err error) *Error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimedOut, Message: MsgTimedOut, Err: err}
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return &Error{Kind: KindHTTP, Message: MsgCancelled, Err: context.Canceled}
	}

	msg := err.Error()
	var uerr *url.Error
	if errors.As(err, &uerr) {
		msg = uerr.Err.Error()
	}
	if msg == "" {
		msg = MsgFailed
	}
	return &Error{Kind: KindHTTP, Message: msg, Err: err}
}

func parsePayload(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}

func errorMessage(payload json.RawMessage, status int) string {
	if detail := detailOf(payload); detail != "" {
		return detail
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return MsgFailed
}

// detailOf reads the backend's {"detail": ...} field. Validation failures
// carry a list of {"msg": ...} objects instead of a string.
func detailOf(payload json.RawMessage) string {
	if payload == nil {
		return ""
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
