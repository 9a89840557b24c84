package session

import "fmt"

// State is the authentication state of the client
type State int

const (
	// LoggedOut: no token, no pending registration
	LoggedOut State = iota
	// Registering: a registration request is in flight
	Registering
	// PendingVerification: registered, waiting for the emailed code
	PendingVerification
	// Authenticated: a session token is stored
	Authenticated
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case Registering:
		return "registering"
	case PendingVerification:
		return "pending_verification"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is a snapshot of the machine. Email is set only while a
// registration is pending verification.
type Status struct {
	State State
	Email string
}

// Pending reports whether a verification code is expected
func (s Status) Pending() bool {
	return s.State == PendingVerification
}

// Messages shown when input is rejected before any request is made
const (
	MsgFillAllFields   = "Пожалуйста, заполните все поля!"
	MsgFillCredentials = "Заполните email и пароль!"
	MsgEnterCode       = "Введите код верификации."
	MsgEnterEmail      = "Введите email."
	MsgResendOK        = "Код верификации успешно отправлен повторно. Проверьте почту."
	MsgSessionExpired  = "Сессия истекла. Войдите снова."
)
