// Package session drives login, registration and email verification.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/existflow/diary/internal/api"
	"github.com/existflow/diary/internal/credentials"
	"github.com/existflow/diary/internal/inflight"
	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/internal/model"
)

// ErrInvalidState is returned when an operation does not apply to the
// current state, e.g. submitting a code with no registration pending
var ErrInvalidState = errors.New("operation not allowed in current session state")

// Auth is the part of the transport the machine needs
type Auth interface {
	Register(ctx context.Context, req model.RegisterRequest) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Verify(ctx context.Context, email, code string) (model.TokenResponse, error)
	ResendCode(ctx context.Context, email string) (string, error)
}

// Machine is the auth/verification state machine. It is safe for concurrent
// use; every operation may run on its own goroutine.
type Machine struct {
	client Auth
	store  credentials.Store
	log    *logger.Logger
	busy   *inflight.Guard

	mu    sync.RWMutex
	state State
	email string
	code  string

	loginErr    error
	registerErr error
	verifyErr   error
	resendErr   error
	resendMsg   string
	notice      string
}

// New creates a machine that starts Authenticated iff store holds a token.
// If client can report rejected sessions (api.Client does), the machine
// subscribes to them.
func New(client Auth, store credentials.Store, log *logger.Logger) *Machine {
	if log == nil {
		log = logger.Default()
	}
	m := &Machine{
		client: client,
		store:  store,
		log:    log,
		busy:   inflight.New(),
		state:  LoggedOut,
	}
	if credentials.Authenticated(store) {
		m.state = Authenticated
	}
	if n, ok := client.(interface{ OnUnauthorized(func()) }); ok {
		n.OnUnauthorized(m.HandleUnauthorized)
	}
	return m
}

// State returns the current status. An Authenticated machine whose token
// has disappeared from the store reads as LoggedOut.
func (m *Machine) State() Status {
	m.mu.RLock()
	st := Status{State: m.state, Email: m.email}
	m.mu.RUnlock()

	if st.State == Authenticated && !credentials.Authenticated(m.store) {
		return Status{State: LoggedOut}
	}
	return st
}

// Busy reports whether any session request is in flight
func (m *Machine) Busy() bool {
	return m.busy.Any()
}

// Login exchanges email and password for a token
func (m *Machine) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := api.NewValidationError(api.OpLogin, MsgFillCredentials)
		m.setLoginErr(err)
		return err
	}
	if m.State().State == Authenticated {
		return ErrInvalidState
	}

	release, err := m.busy.Acquire(api.OpLogin)
	if err != nil {
		return err
	}
	defer release()

	m.setLoginErr(nil)
	m.log.Info("Logging in", logger.F("email", email))

	token, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.log.Warn("Login failed", logger.F("email", email), logger.F("error", err))
		m.setLoginErr(err)
		return err
	}
	if err := m.store.SetToken(token); err != nil {
		err = fmt.Errorf("failed to save session: %w", err)
		m.setLoginErr(err)
		return err
	}

	m.mu.Lock()
	m.enterAuthenticated("")
	m.mu.Unlock()
	m.log.Info("Logged in", logger.F("email", email))
	return nil
}

// Register creates an account. On success the machine waits for the code
// sent to email.
func (m *Machine) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		err := api.NewValidationError(api.OpRegister, MsgFillAllFields)
		m.mu.Lock()
		m.registerErr = err
		m.mu.Unlock()
		return err
	}

	release, err := m.busy.Acquire(api.OpRegister)
	if err != nil {
		return err
	}
	defer release()

	m.mu.Lock()
	if m.state == Authenticated {
		m.mu.Unlock()
		return ErrInvalidState
	}
	m.state = Registering
	m.email = ""
	m.registerErr = nil
	m.notice = ""
	m.mu.Unlock()

	m.log.Info("Registering", logger.F("username", username), logger.F("email", email))
	msg, err := m.client.Register(ctx, model.RegisterRequest{Username: username, Email: email, Password: password})

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.log.Warn("Registration failed", logger.F("email", email), logger.F("error", err))
		if m.state == Registering {
			m.state = LoggedOut
		}
		m.registerErr = err
		return err
	}

	m.enterPending(email)
	m.notice = msg
	m.log.Info("Registered, verification pending", logger.F("email", email))
	return nil
}

// StartVerification waits for a code for email without registering first,
// for accounts registered earlier
func (m *Machine) StartVerification(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		err := api.NewValidationError(api.OpVerify, MsgEnterEmail)
		m.mu.Lock()
		m.verifyErr = err
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Authenticated || m.state == Registering {
		return ErrInvalidState
	}
	m.enterPending(email)
	m.notice = ""
	return nil
}

// SubmitCode verifies the pending registration. A failure keeps the machine
// pending and remembers the code.
func (m *Machine) SubmitCode(ctx context.Context, code string) error {
	m.mu.Lock()
	if m.state != PendingVerification {
		m.mu.Unlock()
		return ErrInvalidState
	}
	email := m.email
	m.code = code
	m.mu.Unlock()

	code = strings.TrimSpace(code)
	if code == "" {
		err := api.NewValidationError(api.OpVerify, MsgEnterCode)
		m.setVerifyErr(err)
		return err
	}

	release, err := m.busy.Acquire(api.OpVerify)
	if err != nil {
		return err
	}
	defer release()

	m.mu.Lock()
	m.verifyErr = nil
	m.resendErr = nil
	m.resendMsg = ""
	m.mu.Unlock()

	resp, err := m.client.Verify(ctx, email, code)
	if err != nil {
		m.log.Warn("Verification failed", logger.F("email", email), logger.F("error", err))
		m.setVerifyErr(err)
		return err
	}
	if err := m.store.SetToken(resp.Token); err != nil {
		err = fmt.Errorf("failed to save session: %w", err)
		m.setVerifyErr(err)
		return err
	}

	m.mu.Lock()
	m.enterAuthenticated(resp.Message)
	m.mu.Unlock()
	m.log.Info("Account verified", logger.F("email", email))
	return nil
}

// Resend asks for a new code. Only the resend message slots change.
func (m *Machine) Resend(ctx context.Context) error {
	m.mu.Lock()
	if m.state != PendingVerification {
		m.mu.Unlock()
		return ErrInvalidState
	}
	email := m.email
	m.mu.Unlock()

	release, err := m.busy.Acquire(api.OpResendCode)
	if err != nil {
		return err
	}
	defer release()

	m.mu.Lock()
	m.resendErr = nil
	m.resendMsg = ""
	m.mu.Unlock()

	_, err = m.client.ResendCode(ctx, email)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.log.Warn("Resend failed", logger.F("email", email), logger.F("error", err))
		m.resendErr = err
		return err
	}
	m.resendMsg = MsgResendOK
	return nil
}

// Cancel abandons a pending verification
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != PendingVerification {
		return
	}
	m.state = LoggedOut
	m.email = ""
	m.code = ""
	m.verifyErr = nil
	m.resendErr = nil
	m.resendMsg = ""
}

// Logout forgets the token. The server is not contacted.
func (m *Machine) Logout() error {
	err := m.store.ClearToken()
	if err != nil {
		m.log.Error("Failed to clear token", logger.F("error", err))
	}

	m.mu.Lock()
	m.reset()
	m.mu.Unlock()
	m.log.Info("Logged out")
	return err
}

// HandleUnauthorized moves to LoggedOut after the server rejected the token.
// The transport has already cleared the credentials.
func (m *Machine) HandleUnauthorized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.state
	m.reset()
	if was == Authenticated {
		m.notice = MsgSessionExpired
		m.log.Info("Session expired")
	}
}

// Email is the address a code is expected for
func (m *Machine) Email() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.email
}

// Code is the last code submitted
func (m *Machine) Code() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.code
}

func (m *Machine) LoginError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loginErr
}

func (m *Machine) RegisterError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registerErr
}

func (m *Machine) VerifyError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.verifyErr
}

func (m *Machine) ResendError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resendErr
}

func (m *Machine) ResendMessage() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resendMsg
}

// Notice is the last informational message from the server
func (m *Machine) Notice() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.notice
}

// ClearMessages empties every message slot
func (m *Machine) ClearMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearSlots()
}

func (m *Machine) setLoginErr(err error) {
	m.mu.Lock()
	m.loginErr = err
	m.mu.Unlock()
}

func (m *Machine) setVerifyErr(err error) {
	m.mu.Lock()
	m.verifyErr = err
	m.mu.Unlock()
}

// callers hold mu
func (m *Machine) enterPending(email string) {
	m.state = PendingVerification
	m.email = email
	m.code = ""
	m.verifyErr = nil
	m.resendErr = nil
	m.resendMsg = ""
}

// callers hold mu
func (m *Machine) enterAuthenticated(notice string) {
	m.state = Authenticated
	m.email = ""
	m.code = ""
	m.clearSlots()
	m.notice = notice
}

// callers hold mu
func (m *Machine) reset() {
	m.state = LoggedOut
	m.email = ""
	m.code = ""
	m.clearSlots()
}

func (m *Machine) clearSlots() {
	m.loginErr = nil
	m.registerErr = nil
	m.verifyErr = nil
	m.resendErr = nil
	m.resendMsg = ""
	m.notice = ""
}
