package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetimes of issued credentials
const (
	CodeTTL  = 5 * time.Minute
	TokenTTL = 24 * time.Hour
)

var errInvalidToken = errors.New("invalid token")

// Claims of a session token
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// newCode returns six random digits
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// issueCode stores a fresh code for u and hands it to the sender
func (s *Server) issueCode(u user) error {
	code, err := newCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	s.db.setCode(u.ID, code, s.now().Add(CodeTTL))
	return s.send(u.Email, code)
}

func (s *Server) issueToken(userID int64) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		UserID: userID,
	})
	return token.SignedString(s.secret)
}

func (s *Server) parseToken(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, errInvalidToken
	}
	return claims.UserID, nil
}
