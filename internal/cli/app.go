package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"github.com/existflow/diary/internal/api"
	"github.com/existflow/diary/internal/config"
	"github.com/existflow/diary/internal/credentials"
	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/internal/notes"
	"github.com/existflow/diary/internal/session"
)

// app is everything a command needs, wired once per invocation
type app struct {
	cfg     *config.Config
	creds   credentials.Store
	client  *api.Client
	session *session.Machine
	notes   *notes.Store

	in      *bufio.Reader
	out     io.Writer
	stdin   io.Reader
	metrics *http.Server
}

func (a *app) open(cfg *config.Config) error {
	creds, err := credentials.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	log := logger.Default()
	client := api.New(cfg.ServerURL, creds,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(log),
		api.WithDebug(logger.ParseLevel(cfg.LogLevel) == logger.DEBUG),
	)

	a.cfg = cfg
	a.creds = creds
	a.client = client
	a.session = session.New(client, creds, log.WithFields(logger.F("component", "session")))
	a.notes = notes.NewStore(client, log.WithFields(logger.F("component", "notes")))
	return nil
}

func (a *app) close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(ctx)
	}
	if a.creds != nil {
		if err := credentials.Close(a.creds); err != nil {
			logger.Warn("Failed to close credential store", logger.F("error", err))
		}
	}
}

// startMetrics exposes the client metrics on cfg.MetricsAddr
func (a *app) startMetrics() {
	if a.cfg.MetricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metrics = &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Metrics server running", logger.F("addr", a.cfg.MetricsAddr))
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", logger.F("error", err))
		}
	}()
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// prompt reads one trimmed line
func (a *app) prompt(label string) string {
	a.printf("%s", label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptPassword reads without echo on a terminal and falls back to a plain
// line when input is piped
func (a *app) promptPassword(label string) string {
	a.printf("%s", label)
	if fd, ok := a.terminal(); ok {
		b, _ := term.ReadPassword(fd)
		a.println()
		return string(b)
	}
	line, _ := a.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// terminal returns the descriptor of stdin when it is a terminal
func (a *app) terminal() (int, bool) {
	f, ok := a.stdin.(interface{ Fd() uintptr })
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// confirm asks a yes/no question, defaulting to no
func (a *app) confirm(question string) bool {
	answer := a.prompt(question + " [y/N]: ")
	return answer == "y" || answer == "Y"
}
