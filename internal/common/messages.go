package common

// RegisterRequest is the payload of the register operation.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the payload of the login operation.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// VerifyTokenRequest is the payload of the verify_token operation.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// PublicUser is a user as seen from outside the service. It never carries
// the password hash.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResult is returned by every successful operation.
type AuthResult struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

// ErrorReply wraps a StatusError on the wire.
type ErrorReply struct {
	Error *StatusError `json:"error"`
}
