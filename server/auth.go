package server

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/internal/model"
)

// Error texts sent as plain-text bodies
const (
	msgBadRequest       = "Неверный формат запроса"
	msgFieldsRequired   = "Пожалуйста, заполните все поля!"
	msgWeakPassword     = "Пароль не соответствует требованиям безопасности"
	msgUserExists       = "Пользователь с таким именем/почтой уже существует"
	msgInvalidLogin     = "Неверное имя пользователя или пароль"
	msgNotVerified      = "Аккаунт не верифицирован"
	msgUserNotFound     = "Пользователь не найден или неверный email"
	msgAlreadyVerified  = "Аккаунт уже верифицирован"
	msgWrongCode        = "Неверный код верификации"
	msgCodeExpired      = "Срок действия кода истек"
	msgInternal         = "Ошибка сервера"
	msgVerified         = "Аккаунт успешно верифицирован!"
	msgCodeResent       = "Новый код верификации успешно отправлен."
	msgCodeSendFailed   = "Ошибка отправки email. Код обновлен в БД."
	msgRegistered       = "Код верификации отправлен на "
	passwordSpecialChar = "!@#$%^&*"
)

type registerResponse struct {
	ID      int64  `json:"id"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// validPassword requires 8+ characters with a lower and an upper case letter,
// a digit and one of !@#$%^&*
func validPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			digit = true
		case strings.ContainsRune(passwordSpecialChar, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// handleRegister creates an unverified account and issues a code
func (s *Server) handleRegister(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, msgBadRequest)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.String(http.StatusBadRequest, msgFieldsRequired)
	}
	if !validPassword(req.Password) {
		return c.String(http.StatusBadRequest, msgWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("bcrypt error", logger.F("error", err))
		return c.String(http.StatusInternalServerError, msgInternal)
	}

	u, err := s.db.createUser(user{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	})
	if errors.Is(err, errDuplicateUser) {
		return c.String(http.StatusConflict, msgUserExists)
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, msgInternal)
	}

	if err := s.issueCode(u); err != nil {
		s.log.Warn("Failed to send verification code", logger.F("email", u.Email), logger.F("error", err))
	}

	s.log.Info("User registered", logger.F("username", u.Username), logger.F("id", u.ID))
	return c.JSON(http.StatusCreated, registerResponse{
		ID:      u.ID,
		Status:  http.StatusCreated,
		Message: msgRegistered + u.Email,
	})
}

// handleLogin looks the user up by the email sent in "username"
func (s *Server) handleLogin(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, msgBadRequest)
	}

	u, ok := s.db.userByEmail(req.Email)
	if !ok {
		return c.String(http.StatusUnauthorized, msgInvalidLogin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return c.String(http.StatusUnauthorized, msgInvalidLogin)
	}
	if !u.Verified {
		return c.String(http.StatusForbidden, msgNotVerified)
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		s.log.Error("token error", logger.F("error", err))
		return c.String(http.StatusInternalServerError, msgInternal)
	}

	s.log.Info("User logged in", logger.F("id", u.ID))
	return c.JSON(http.StatusOK, model.TokenResponse{Token: token})
}

// handleVerify checks the emailed code and returns a session token
func (s *Server) handleVerify(c echo.Context) error {
	var req model.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, msgBadRequest)
	}

	u, ok := s.db.userByEmail(req.Email)
	if !ok {
		return c.String(http.StatusNotFound, msgUserNotFound)
	}
	if u.Verified {
		return c.String(http.StatusBadRequest, msgAlreadyVerified)
	}
	if u.Code == "" || strings.TrimSpace(req.Code) != u.Code {
		return c.String(http.StatusUnauthorized, msgWrongCode)
	}
	if s.now().After(u.CodeExpires) {
		return c.String(http.StatusUnauthorized, msgCodeExpired)
	}

	s.db.markVerified(u.ID)

	token, err := s.issueToken(u.ID)
	if err != nil {
		s.log.Error("token error", logger.F("error", err))
		return c.String(http.StatusInternalServerError, msgInternal)
	}

	s.log.Info("User verified", logger.F("id", u.ID))
	return c.JSON(http.StatusOK, model.TokenResponse{Token: token, Message: msgVerified})
}

// handleResendCode replaces the pending code with a new one
func (s *Server) handleResendCode(c echo.Context) error {
	var req model.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, msgBadRequest)
	}

	u, ok := s.db.userByEmail(req.Email)
	if !ok {
		return c.String(http.StatusNotFound, msgUserNotFound)
	}
	if u.Verified {
		return c.String(http.StatusBadRequest, msgAlreadyVerified)
	}

	if err := s.issueCode(u); err != nil {
		s.log.Warn("Failed to send verification code", logger.F("email", u.Email), logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, model.MessageResponse{Message: msgCodeSendFailed})
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: msgCodeResent})
}
