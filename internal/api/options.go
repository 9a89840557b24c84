package api

import (
	"net/http"
	"time"

	"github.com/existflow/diary/internal/logger"
)

// DefaultTimeout bounds every request unless WithTimeout says otherwise
const DefaultTimeout = 15 * time.Second

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDebug dumps raw requests and responses to the logger at debug level
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}
