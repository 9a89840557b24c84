package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/diary/internal/logger"
)

const ctxUserID = "user_id"

// authMiddleware checks the bearer token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		if auth == "" {
			return c.String(http.StatusUnauthorized, "Требуется авторизация (отсутствует заголовок)")
		}

		parts := strings.Split(auth, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.String(http.StatusUnauthorized, "Неверный формат токена")
		}

		userID, err := s.parseToken(parts[1])
		if err != nil {
			return c.String(http.StatusUnauthorized, "Недействительный или истекший токен")
		}
		if _, ok := s.db.userByID(userID); !ok {
			return c.String(http.StatusUnauthorized, "Недействительный или истекший токен")
		}

		c.Set(ctxUserID, userID)
		return next(c)
	}
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		res := c.Response()
		s.log.Info("HTTP Request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
			logger.F("duration", time.Since(start).String()))
		return nil
	}
}

func userID(c echo.Context) int64 {
	id, _ := c.Get(ctxUserID).(int64)
	return id
}
