package api

import (
	"context"
	"net/http"

	"github.com/existflow/diary/internal/model"
)

// Register creates an account and returns the server's message. The account
// stays unusable until the emailed code is verified.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (string, error) {
	var resp model.MessageResponse
	err := c.do(ctx, request{
		op:       OpRegister,
		method:   http.MethodPost,
		path:     "/register",
		body:     req,
		fallback: MsgRegisterFailed,
		policy:   jsonOrText,
	}, "", &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login exchanges credentials for a session token. The email is sent under the
// "username" key.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp model.TokenResponse
	err := c.do(ctx, request{
		op:       OpLogin,
		method:   http.MethodPost,
		path:     "/login",
		body:     model.LoginRequest{Email: email, Password: password},
		fallback: MsgInvalidLogin,
		policy:   genericMessage,
	}, "", &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &Error{Kind: KindRequestFailed, Op: OpLogin, Status: http.StatusOK, Message: MsgUnexpectedFormat}
	}
	return resp.Token, nil
}

// Verify submits the emailed code and returns the issued token with the
// server's message
func (c *Client) Verify(ctx context.Context, email, code string) (model.TokenResponse, error) {
	var resp model.TokenResponse
	err := c.do(ctx, request{
		op:       OpVerify,
		method:   http.MethodPost,
		path:     "/verify",
		body:     model.VerifyRequest{Email: email, Code: code},
		fallback: MsgVerifyFailed,
		policy:   jsonMessage,
	}, "", &resp)
	if err != nil {
		return model.TokenResponse{}, err
	}
	if resp.Token == "" {
		return model.TokenResponse{}, &Error{Kind: KindRequestFailed, Op: OpVerify, Status: http.StatusOK, Message: MsgUnexpectedFormat}
	}
	return resp, nil
}

// ResendCode asks the server to issue a new verification code
func (c *Client) ResendCode(ctx context.Context, email string) (string, error) {
	var resp model.MessageResponse
	err := c.do(ctx, request{
		op:       OpResendCode,
		method:   http.MethodPost,
		path:     "/resend-code",
		body:     model.VerifyRequest{Email: email},
		fallback: MsgResendFailed,
		policy:   jsonMessage,
	}, "", &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
