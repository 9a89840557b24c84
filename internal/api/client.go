// Package api is the transport layer between the diary client and the remote
// diary API. Every call maps its outcome onto the error taxonomy in errors.go.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/existflow/diary/internal/credentials"
	"github.com/existflow/diary/internal/logger"
)

// HeaderRequestID carries a per-request uuid, echoed by the server in its logs
const HeaderRequestID = "X-Request-ID"

// Client talks to the diary API
type Client struct {
	baseURL    string
	store      credentials.Store
	timeout    time.Duration
	httpClient *http.Client
	log        *logger.Logger
	debug      bool
	rc         *resty.Client

	mu        sync.Mutex
	listeners []func()
}

// New creates a client for baseURL. Protected calls read their bearer token from
// store, and a rejected token is cleared from it.
func New(baseURL string, store credentials.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		timeout: DefaultTimeout,
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		c.rc = resty.NewWithClient(c.httpClient)
	} else {
		c.rc = resty.New()
	}
	c.rc.SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{c.log}).
		SetDebug(c.debug)

	return c
}

// BaseURL returns the server address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnUnauthorized registers fn to run after the server rejected the session
// token and the credentials were cleared
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// messagePolicy decides where the user-visible text of a failure comes from
type messagePolicy int

const (
	// genericMessage always uses the call's fallback
	genericMessage messagePolicy = iota
	// jsonMessage uses the JSON "message" field
	jsonMessage
	// jsonOrText uses "message", then "error", then a plain-text body
	jsonOrText
)

type request struct {
	op         string
	method     string
	path       string
	pathParams map[string]string
	body       any
	fallback   string
	policy     messagePolicy
	notFound   bool // 404 means the note is missing or not the caller's
}

// doProtected runs a bearer-authenticated request. It is the only place where
// a missing or rejected token is turned into an Unauthorized error.
func (c *Client) doProtected(ctx context.Context, r request, out any) error {
	token, ok := c.store.Token()
	if !ok {
		err := &Error{Kind: KindUnauthorized, Op: r.op, Message: MsgUnauthorized}
		c.log.Debug("No session token, request not sent", logger.F("op", r.op))
		observe(r.op, err)
		return err
	}

	err := c.do(ctx, r, token, out)
	if KindOf(err) == KindUnauthorized {
		c.expireSession(r.op)
	}
	return err
}

// do sends a request and classifies the response. token may be empty for the
// public auth endpoints.
func (c *Client) do(ctx context.Context, r request, token string, out any) (err error) {
	defer func() { observe(r.op, err) }()

	reqID := uuid.NewString()
	req := c.rc.R().
		SetContext(ctx).
		SetHeader(HeaderRequestID, reqID)
	if token != "" {
		req.SetAuthToken(token)
	}
	if r.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(r.body)
	}
	if len(r.pathParams) > 0 {
		req.SetPathParams(r.pathParams)
	}

	c.log.Debug("HTTP Request",
		logger.F("op", r.op),
		logger.F("method", r.method),
		logger.F("path", r.path),
		logger.F("request_id", reqID))

	start := time.Now()
	resp, err := req.Execute(r.method, r.path)
	if err != nil {
		c.log.Warn("Request failed", logger.F("op", r.op), logger.F("request_id", reqID), logger.F("error", err))
		return &Error{Kind: KindNetwork, Op: r.op, Message: MsgNetwork, Err: err}
	}
	requestDuration.WithLabelValues(r.op).Observe(time.Since(start).Seconds())

	status := resp.StatusCode()
	body := resp.Body()
	c.log.Debug("HTTP Response",
		logger.F("op", r.op),
		logger.F("status", status),
		logger.F("request_id", reqID),
		logger.F("bytes", len(body)))

	switch {
	case resp.IsSuccess():
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return &Error{Kind: KindRequestFailed, Op: r.op, Status: status, Message: MsgUnexpectedFormat,
				Err: fmt.Errorf("failed to decode response: %w", err)}
		}
		return nil
	case status == http.StatusUnauthorized && token != "":
		return &Error{Kind: KindUnauthorized, Op: r.op, Status: status, Message: MsgUnauthorized}
	case status == http.StatusNotFound && r.notFound:
		return &Error{Kind: KindNotFoundOrForbidden, Op: r.op, Status: status, Message: MsgNotFound}
	default:
		return &Error{Kind: KindRequestFailed, Op: r.op, Status: status, Message: r.message(body)}
	}
}

func (r request) message(body []byte) string {
	if r.policy == genericMessage {
		return r.fallback
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if r.policy == jsonOrText && payload.Error != "" {
			return payload.Error
		}
		return r.fallback
	}

	if r.policy == jsonOrText {
		if text := strings.TrimSpace(string(body)); text != "" {
			return text
		}
	}
	return r.fallback
}

func (c *Client) expireSession(op string) {
	c.log.Info("Session rejected by server, clearing credentials", logger.F("op", op))
	if err := c.store.ClearToken(); err != nil {
		c.log.Error("Failed to clear token", logger.F("error", err))
	}

	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// restyLogger routes resty's own diagnostics into the application log
type restyLogger struct {
	l *logger.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
