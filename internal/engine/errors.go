package engine

import (
	"errors"

	"github.com/abdoElHodaky/matchcore/internal/book"
)

// Sentinel errors for the Command API boundary, paired with classifier
// functions so callers can distinguish validation failures from
// post-acceptance ones without string matching.
var (
	ErrZeroQuantity        = errors.New("engine: quantity must be positive")
	ErrNonPositivePrice    = errors.New("engine: price must be positive")
	ErrOrderNotFound       = book.ErrOrderNotFound
	ErrOrderNotActive      = book.ErrOrderNotActive
	ErrCascadeDepthReached = errors.New("engine: cascade depth bound reached")
	ErrUnknownStopOrder    = errors.New("engine: unknown stop order")
	ErrUnknownCommand      = errors.New("engine: unknown command kind")
)

// IsValidationError reports whether err was rejected before any state
// change (pre-mutation validation failure,), as opposed to a failure
// discovered while acting on an already-accepted command.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrZeroQuantity) || errors.Is(err, ErrNonPositivePrice)
}

// IsCancelError reports whether err is one of the cancel/modify-path
// sentinels.
func IsCancelError(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrOrderNotActive)
}
