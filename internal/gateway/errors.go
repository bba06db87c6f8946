package gateway

import (
	"errors"
	"fmt"

	"github.com/iliyamo/pos-backoffice/internal/remote"
)

// ErrorKind classifies an AuthError.
type ErrorKind int

const (
	// InvalidCredentials: the service answered but issued no token.
	InvalidCredentials ErrorKind = iota + 1
	// NetworkFailure: the request never got an HTTP answer.
	NetworkFailure
	// ServerError: the service answered with a non-2xx status.
	ServerError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid_credentials"
	case NetworkFailure:
		return "network_failure"
	case ServerError:
		return "server_error"
	}
	return "unknown"
}

// User facing messages.
const (
	MsgInvalidCredentials = "invalid credentials"
	MsgLoginFailed        = "login failed"
	MsgRequestFailed      = "request failed"
)

// Sentinels matched by errors.Is against an *AuthError of the same kind.
var (
	ErrInvalidCredentials = &AuthError{Kind: InvalidCredentials, Message: MsgInvalidCredentials}
	ErrNetworkFailure     = &AuthError{Kind: NetworkFailure}
	ErrServerError        = &AuthError{Kind: ServerError}
)

// AuthError is the typed failure of gateway operations.  Message is safe
// to show the operator.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Status  int   // HTTP status for ServerError
	Err     error // underlying cause, if any
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is matches any AuthError with the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// classify turns a remote failure into an AuthError, keeping the
// provider's message when it sent one.
func classify(err error, fallback string) *AuthError {
	var api *remote.APIError
	if errors.As(err, &api) {
		msg := api.Message
		if msg == "" {
			msg = fallback
		}
		return &AuthError{Kind: ServerError, Message: msg, Status: api.Status, Err: err}
	}
	return &AuthError{Kind: NetworkFailure, Message: fallback, Err: err}
}
