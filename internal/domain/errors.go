package domain

import (
	"errors"
	"fmt"
)

// ErrRegistryUnavailable means the backing store could not be reached
// when the coin registry loaded. Fatal to process startup.
var ErrRegistryUnavailable = errors.New("coin registry store unavailable")

// RegistrationError wraps a failed coin insert. The collector skips the
// coin for the current cycle and continues.
type RegistrationError struct {
	Symbol string
	Err    error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register coin %s: %v", e.Symbol, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed transactional write. The batch is
// rolled back; the collector skips the coin and continues.
type PersistenceError struct {
	CoinID int64
	Op     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s for coin %d: %v", e.Op, e.CoinID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
