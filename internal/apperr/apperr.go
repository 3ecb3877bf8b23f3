// Package apperr defines the closed error taxonomy shared by every layer of
// the application. Callers classify failures by Kind rather than by error
// subtype, switching on KindOf instead of chasing concrete types.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies one member of the error taxonomy.
type Kind int

const (
	// KindUnknown covers unexpected failures with no better classification.
	KindUnknown Kind = iota
	// KindMissingAPIKey means no credential was supplied by flag, env, or keyring.
	KindMissingAPIKey
	// KindInvalidCalendarID means the upstream reported the calendar does not exist.
	KindInvalidCalendarID
	// KindAuth means the credential was rejected or lacks permission.
	KindAuth
	// KindPermission means access to the calendar is forbidden.
	KindPermission
	// KindNetwork covers transport-level failures and unexpected HTTP statuses.
	KindNetwork
	// KindInvalidData means the payload or a record failed structural checks.
	KindInvalidData
	// KindCircuitOpen means the circuit breaker rejected the call without
	// invoking the underlying operation.
	KindCircuitOpen
)

// String returns the stable name of the kind, used in logs and messages.
func (k Kind) String() string {
	switch k {
	case KindMissingAPIKey:
		return "missing_api_key"
	case KindInvalidCalendarID:
		return "invalid_calendar_id"
	case KindAuth:
		return "auth_error"
	case KindPermission:
		return "permission_error"
	case KindNetwork:
		return "network_error"
	case KindInvalidData:
		return "invalid_data"
	case KindCircuitOpen:
		return "circuit_open"
	default:
		return "unknown_error"
	}
}

// Error is the single error type carried across component boundaries.
// Cause is preserved for diagnostics and reachable through errors.Unwrap.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// E constructs a taxonomy error without a cause.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Ef constructs a taxonomy error with a formatted message.
func Ef(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs a taxonomy error chaining the original cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the taxonomy kind from any error in the chain.
// Errors outside the taxonomy classify as KindUnknown.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Retryable reports whether the failure is transient. Only network and
// unclassified errors qualify; everything else is permanent and must not
// consume retry attempts.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindNetwork, KindUnknown:
		return true
	default:
		return false
	}
}
