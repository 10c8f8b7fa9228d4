package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOperationFailed = errors.New("operation failed")

	// Gateway errors. Declines are definitive rejections: the failure reason
	// is persisted on the subscription record and shown to the operator.
	ErrPaymentDeclined = errors.New("payment declined")
	ErrInvalidMandate  = errors.New("invalid mandate")
	ErrMandateNotFound = errors.New("mandate not found")

	// Transient gateway errors: no definitive outcome exists on the provider
	// side, so these are eligible for a later retry.
	ErrGatewayTimeout     = errors.New("gateway call timed out")
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// Lifecycle errors
	ErrPaymentMethodImmutable = errors.New("payment method cannot be changed after creation")
	ErrInvalidStatusChange    = errors.New("invalid subscription status change")
	ErrRecordLocked           = errors.New("subscription record is locked by another operation")

	// Storage plumbing errors
	ErrInvalidExecContext = errors.New("invalid exec context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)

// IsHardDecline reports whether err is a definitive gateway rejection,
// as opposed to a transient failure worth retrying automatically.
func IsHardDecline(err error) bool {
	return errors.Is(err, ErrPaymentDeclined) || errors.Is(err, ErrInvalidMandate)
}

// IsTransient reports whether err is a transport-level failure that never
// produced a definitive outcome on the provider side.
func IsTransient(err error) bool {
	return errors.Is(err, ErrGatewayTimeout) || errors.Is(err, ErrGatewayUnavailable)
}
