package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrInvalidData      = errors.New("invalid data provided for profile operations")
	ErrInvalidOAuthCode = errors.New("invalid oauth code")
	ErrOAuthExchange    = errors.New("oauth provider exchange failed")
	ErrUnhandled        = errors.New("unexpected error")
)

// UpstreamError carries an error envelope returned by the identity service.
// Message and status code pass through to the caller verbatim.
type UpstreamError struct {
	Message    string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("identity service rejected request: %s (status %d)", e.Message, e.StatusCode)
}

// checkEnvelope translates an embedded error envelope into an UpstreamError.
// Remote commands reply with data even when they fail; the transport never
// reports application-level rejections as transport faults.
func checkEnvelope(env *ErrorEnvelope) error {
	if env == nil {
		return nil
	}
	return &UpstreamError{Message: env.Message, StatusCode: env.StatusCode}
}
