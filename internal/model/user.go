package model

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /login. The server looks the user up by
// email but reads it from the "username" key.
type LoginRequest struct {
	Email    string `json:"username"`
	Password string `json:"password"`
}

// VerifyRequest is the body of POST /verify and POST /resend-code
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code,omitempty"`
}

// MessageResponse carries a human readable server message
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// TokenResponse is returned by login and verify
type TokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}
