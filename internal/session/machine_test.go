package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/diary/internal/api"
	"github.com/existflow/diary/internal/credentials"
	"github.com/existflow/diary/internal/inflight"
	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/internal/model"
)

type fakeAuth struct {
	mu    sync.Mutex
	calls map[string]int

	registerMsg string
	registerErr error
	loginToken  string
	loginErr    error
	verifyResp  model.TokenResponse
	verifyErr   error
	resendErr   error

	// when set, calls signal entered and wait for release
	entered chan struct{}
	release chan struct{}

	lastEmail string
	lastCode  string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{calls: map[string]int{}}
}

func (f *fakeAuth) enter(op string) {
	f.mu.Lock()
	f.calls[op]++
	entered, release := f.entered, f.release
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
		<-release
	}
}

func (f *fakeAuth) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAuth) Register(_ context.Context, req model.RegisterRequest) (string, error) {
	f.enter(api.OpRegister)
	f.mu.Lock()
	f.lastEmail = req.Email
	f.mu.Unlock()
	return f.registerMsg, f.registerErr
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (string, error) {
	f.enter(api.OpLogin)
	f.mu.Lock()
	f.lastEmail = email
	f.mu.Unlock()
	return f.loginToken, f.loginErr
}

func (f *fakeAuth) Verify(_ context.Context, email, code string) (model.TokenResponse, error) {
	f.enter(api.OpVerify)
	f.mu.Lock()
	f.lastEmail, f.lastCode = email, code
	f.mu.Unlock()
	return f.verifyResp, f.verifyErr
}

func (f *fakeAuth) ResendCode(_ context.Context, email string) (string, error) {
	f.enter(api.OpResendCode)
	f.mu.Lock()
	f.lastEmail = email
	f.mu.Unlock()
	return "sent", f.resendErr
}

func newMachine(t *testing.T, auth *fakeAuth) (*Machine, *credentials.Memory) {
	t.Helper()
	store := credentials.NewMemory()
	return New(auth, store, logger.Nop()), store
}

func TestNew_InitialState(t *testing.T) {
	store := credentials.NewMemory()
	m := New(newFakeAuth(), store, logger.Nop())
	assert.Equal(t, LoggedOut, m.State().State)

	require.NoError(t, store.SetToken("T"))
	m = New(newFakeAuth(), store, logger.Nop())
	assert.Equal(t, Authenticated, m.State().State)
}

func TestState_VanishedTokenReadsLoggedOut(t *testing.T) {
	store := credentials.NewMemory()
	require.NoError(t, store.SetToken("T"))
	m := New(newFakeAuth(), store, logger.Nop())

	require.NoError(t, store.ClearToken())
	assert.Equal(t, LoggedOut, m.State().State)
}

func TestLogin(t *testing.T) {
	auth := newFakeAuth()
	auth.loginToken = "T1"
	m, store := newMachine(t, auth)

	require.NoError(t, m.Login(context.Background(), " alice@x.io ", "Secret1!"))
	assert.Equal(t, Authenticated, m.State().State)
	token, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "T1", token)
	assert.Equal(t, "alice@x.io", auth.lastEmail)
	assert.NoError(t, m.LoginError())
}

func TestLogin_FailureKeepsStateAndSetsSlot(t *testing.T) {
	auth := newFakeAuth()
	auth.loginErr = &api.Error{Kind: api.KindRequestFailed, Op: api.OpLogin, Status: 401, Message: api.MsgInvalidLogin}
	m, store := newMachine(t, auth)

	err := m.Login(context.Background(), "alice@x.io", "wrong")
	require.Error(t, err)
	assert.Equal(t, LoggedOut, m.State().State)
	assert.Equal(t, api.MsgInvalidLogin, m.LoginError().Error())
	_, ok := store.Token()
	assert.False(t, ok)
}

func TestLogin_EmptyFieldsAreValidationErrors(t *testing.T) {
	auth := newFakeAuth()
	m, _ := newMachine(t, auth)

	err := m.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, api.ErrValidation)
	assert.Equal(t, MsgFillCredentials, m.LoginError().Error())
	assert.Zero(t, auth.count(api.OpLogin))
}

func TestRegister_MovesToPendingVerification(t *testing.T) {
	auth := newFakeAuth()
	auth.registerMsg = "Код отправлен"
	m, _ := newMachine(t, auth)

	require.NoError(t, m.Register(context.Background(), "alice", "alice@x.io", "Secret1!"))
	st := m.State()
	assert.Equal(t, PendingVerification, st.State)
	assert.Equal(t, "alice@x.io", st.Email)
	assert.True(t, st.Pending())
	assert.Equal(t, "Код отправлен", m.Notice())
}

func TestRegister_EmptyFieldNeverReachesNetwork(t *testing.T) {
	auth := newFakeAuth()
	m, _ := newMachine(t, auth)

	for _, tc := range [][3]string{{"", "e@x.io", "pw"}, {"u", " ", "pw"}, {"u", "e@x.io", ""}} {
		err := m.Register(context.Background(), tc[0], tc[1], tc[2])
		assert.ErrorIs(t, err, api.ErrValidation)
	}
	assert.Zero(t, auth.count(api.OpRegister))
	assert.Equal(t, LoggedOut, m.State().State)
	assert.Equal(t, MsgFillAllFields, m.RegisterError().Error())
}

func TestRegister_FailureReturnsToLoggedOut(t *testing.T) {
	auth := newFakeAuth()
	auth.registerErr = &api.Error{Kind: api.KindRequestFailed, Op: api.OpRegister, Status: 409, Message: "Пользователь уже существует"}
	m, _ := newMachine(t, auth)

	err := m.Register(context.Background(), "alice", "alice@x.io", "Secret1!")
	require.Error(t, err)
	assert.Equal(t, LoggedOut, m.State().State)
	assert.Equal(t, "Пользователь уже существует", m.RegisterError().Error())
}

func TestRegister_RegisteringWhileInFlight(t *testing.T) {
	auth := newFakeAuth()
	auth.entered = make(chan struct{})
	auth.release = make(chan struct{})
	m, _ := newMachine(t, auth)

	done := make(chan error, 1)
	go func() {
		done <- m.Register(context.Background(), "alice", "alice@x.io", "Secret1!")
	}()
	<-auth.entered

	assert.Equal(t, Registering, m.State().State)
	assert.True(t, m.Busy())

	// a second submission is rejected without a request
	err := m.Register(context.Background(), "alice", "alice@x.io", "Secret1!")
	assert.ErrorIs(t, err, inflight.ErrBusy)

	close(auth.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, auth.count(api.OpRegister))
	assert.Equal(t, PendingVerification, m.State().State)
	assert.False(t, m.Busy())
}

func TestSubmitCode(t *testing.T) {
	auth := newFakeAuth()
	auth.verifyResp = model.TokenResponse{Token: "T2", Message: "Аккаунт успешно верифицирован!"}
	m, store := newMachine(t, auth)
	require.NoError(t, m.Register(context.Background(), "alice", "alice@x.io", "Secret1!"))

	require.NoError(t, m.SubmitCode(context.Background(), "123456"))
	assert.Equal(t, Status{State: Authenticated}, m.State())
	assert.Equal(t, "alice@x.io", auth.lastEmail)
	assert.Equal(t, "123456", auth.lastCode)
	token, _ := store.Token()
	assert.Equal(t, "T2", token)
	assert.Equal(t, "Аккаунт успешно верифицирован!", m.Notice())
}

func TestSubmitCode_FailureStaysPendingAndKeepsCode(t *testing.T) {
	auth := newFakeAuth()
	auth.verifyErr = &api.Error{Kind: api.KindRequestFailed, Op: api.OpVerify, Status: 401, Message: api.MsgVerifyFailed}
	m, store := newMachine(t, auth)
	require.NoError(t, m.StartVerification("alice@x.io"))

	err := m.SubmitCode(context.Background(), "000000")
	require.Error(t, err)
	st := m.State()
	assert.Equal(t, PendingVerification, st.State)
	assert.Equal(t, "alice@x.io", st.Email)
	assert.Equal(t, "000000", m.Code())
	assert.Equal(t, api.MsgVerifyFailed, m.VerifyError().Error())
	_, ok := store.Token()
	assert.False(t, ok)
}

func TestSubmitCode_Guards(t *testing.T) {
	auth := newFakeAuth()
	m, _ := newMachine(t, auth)

	assert.ErrorIs(t, m.SubmitCode(context.Background(), "1"), ErrInvalidState)

	require.NoError(t, m.StartVerification("alice@x.io"))
	err := m.SubmitCode(context.Background(), "  ")
	assert.ErrorIs(t, err, api.ErrValidation)
	assert.Equal(t, MsgEnterCode, m.VerifyError().Error())
	assert.Zero(t, auth.count(api.OpVerify))
}

func TestResend(t *testing.T) {
	auth := newFakeAuth()
	m, _ := newMachine(t, auth)
	assert.ErrorIs(t, m.Resend(context.Background()), ErrInvalidState)

	require.NoError(t, m.StartVerification("alice@x.io"))
	require.NoError(t, m.Resend(context.Background()))
	assert.Equal(t, MsgResendOK, m.ResendMessage())
	assert.NoError(t, m.ResendError())
	assert.Equal(t, PendingVerification, m.State().State)

	auth.resendErr = &api.Error{Kind: api.KindRequestFailed, Op: api.OpResendCode, Message: api.MsgResendFailed}
	require.Error(t, m.Resend(context.Background()))
	assert.Empty(t, m.ResendMessage())
	assert.Equal(t, api.MsgResendFailed, m.ResendError().Error())
	assert.Equal(t, PendingVerification, m.State().State)
}

func TestCancel(t *testing.T) {
	m, _ := newMachine(t, newFakeAuth())
	require.NoError(t, m.StartVerification("alice@x.io"))
	m.Cancel()
	assert.Equal(t, Status{State: LoggedOut}, m.State())
}

func TestStartVerification_Validation(t *testing.T) {
	m, _ := newMachine(t, newFakeAuth())
	assert.ErrorIs(t, m.StartVerification(" "), api.ErrValidation)
	assert.Equal(t, LoggedOut, m.State().State)
}

func TestLogout(t *testing.T) {
	auth := newFakeAuth()
	m, store := newMachine(t, auth)
	require.NoError(t, store.SetToken("T"))
	m = New(auth, store, logger.Nop())

	require.NoError(t, m.Logout())
	assert.Equal(t, LoggedOut, m.State().State)
	_, ok := store.Token()
	assert.False(t, ok)
	assert.Zero(t, auth.count(api.OpLogin))
}

func TestHandleUnauthorized(t *testing.T) {
	store := credentials.NewMemory()
	require.NoError(t, store.SetToken("T"))
	m := New(newFakeAuth(), store, logger.Nop())

	m.HandleUnauthorized()
	assert.Equal(t, LoggedOut, m.State().State)
	assert.Equal(t, MsgSessionExpired, m.Notice())
}

type notifyingAuth struct {
	*fakeAuth
	listeners []func()
}

func (n *notifyingAuth) OnUnauthorized(fn func()) {
	n.listeners = append(n.listeners, fn)
}

func TestNew_SubscribesToUnauthorized(t *testing.T) {
	store := credentials.NewMemory()
	require.NoError(t, store.SetToken("T"))
	auth := &notifyingAuth{fakeAuth: newFakeAuth()}
	m := New(auth, store, logger.Nop())
	require.Len(t, auth.listeners, 1)

	auth.listeners[0]()
	assert.Equal(t, LoggedOut, m.State().State)
}

func TestLogin_TokenStoreFailure(t *testing.T) {
	auth := newFakeAuth()
	auth.loginToken = "" // Memory rejects empty tokens
	m, _ := newMachine(t, auth)

	err := m.Login(context.Background(), "alice@x.io", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, credentials.ErrEmptyToken))
	assert.Equal(t, LoggedOut, m.State().State)
}
