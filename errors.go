package fiattoken

import (
	"errors"
	"fmt"
)

// AuthorizationError represents a protocol-level rejection of a submission.
// Every failure is fatal to the current submission: no partial ledger or
// balance mutation survives it, and no event is emitted.
type AuthorizationError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports code equality so comparisons via errors.Is work across instances.
func (e *AuthorizationError) Is(target error) bool {
	t, ok := target.(*AuthorizationError)
	return ok && t.Code == e.Code
}

// Common error codes
const (
	ErrCodeInvalidSignature    = "invalid_signature"
	ErrCodeNotYetValid         = "authorization_not_yet_valid"
	ErrCodeExpired             = "authorization_expired"
	ErrCodeAlreadyUsed         = "authorization_already_used"
	ErrCodeCallerMustBePayee   = "caller_must_be_payee"
	ErrCodeInsufficientBalance = "insufficient_balance"
	ErrCodeInvalidPayload      = "invalid_payload"
)

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(code, message string, details map[string]interface{}) *AuthorizationError {
	return &AuthorizationError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// ErrorCode extracts the protocol error code from err, or "" if err carries
// no AuthorizationError anywhere in its chain.
func ErrorCode(err error) string {
	var authErr *AuthorizationError
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return ""
}
