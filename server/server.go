// Package server is a development implementation of the diary API. It keeps
// users and notes in memory and prints verification codes to the log instead
// of mailing them.
package server

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/existflow/diary/internal/logger"
)

// CodeSender delivers a verification code to the owner of email
type CodeSender func(email, code string) error

// Server is the diary API server
type Server struct {
	echo   *echo.Echo
	db     *memDB
	secret []byte
	now    func() time.Time
	send   CodeSender
	log    *logger.Logger
}

// Option configures a Server
type Option func(*Server)

// WithSecret sets the HMAC key used to sign tokens
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// WithClock replaces time.Now, for code and token expiry
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithCodeSender replaces the default sender, which logs the code
func WithCodeSender(send CodeSender) Option {
	return func(s *Server) {
		s.send = send
	}
}

// WithLogger sets the request logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// New creates a new server. Without WithSecret a random key is generated, so
// tokens do not survive a restart.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		db:  newMemDB(),
		now: time.Now,
		log: logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
	}
	if s.send == nil {
		s.send = s.logCode
	}

	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))

	e.GET("/health", s.handleHealth)

	// Auth endpoints (public)
	e.POST("/register", s.handleRegister)
	e.POST("/login", s.handleLogin)
	e.POST("/verify", s.handleVerify)
	e.POST("/resend-code", s.handleResendCode)

	// Protected endpoints
	notes := e.Group("/notes", s.authMiddleware)
	notes.GET("", s.handleListNotes)
	notes.POST("", s.handleCreateNote)
	notes.GET("/:id", s.handleGetNote)
	notes.PUT("/:id", s.handleUpdateNote)
	notes.DELETE("/:id", s.handleDeleteNote)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.log.Info("Dev server listening", logger.F("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for running ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// LastCode returns the verification code currently issued for email
func (s *Server) LastCode(email string) (string, bool) {
	u, ok := s.db.userByEmail(email)
	if !ok || u.Verified || u.Code == "" {
		return "", false
	}
	return u.Code, true
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logCode(email, code string) error {
	s.log.Info("Verification code issued", logger.F("email", email), logger.F("code", code))
	return nil
}
