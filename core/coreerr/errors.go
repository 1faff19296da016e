// Package coreerr defines the error kinds returned by the friendship, play
// session and transaction services. Callers classify failures with errors.Is.
package coreerr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrStorageUnavailable wraps every database failure. The cause stays in
	// the chain for logging; clients only see a generic message.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNotFound           = errors.New("not found")
	// ErrInvalidPaymentMethod is returned for an unparseable payment method.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrPreconditionViolation rejects an operation whose source state does
	// not allow it, e.g. accepting a request that was never sent.
	ErrPreconditionViolation = errors.New("precondition violation")
	// ErrBusy means another request holds the pair lock. Nothing was written.
	ErrBusy = errors.New("resource busy, please retry")
)

// Storage wraps a database error as ErrStorageUnavailable. It returns nil for
// a nil err and passes through errors that already carry a core kind, so a
// precondition failure raised inside a transaction callback is not relabelled.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsKind(err) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// Precondition returns an ErrPreconditionViolation with a reason.
func Precondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPreconditionViolation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// IsKind reports whether err already carries one of the core error kinds.
func IsKind(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrPreconditionViolation) ||
		errors.Is(err, ErrBusy)
}
