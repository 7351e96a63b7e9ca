package book

import "errors"

// Sentinel errors for the book's cancel/modify boundary, paired with a
// classifier so callers can distinguish them from validation failures.
var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderNotActive = errors.New("order is not active")
)

// IsCancelError reports whether err is one of the cancel-path sentinels.
func IsCancelError(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrOrderNotActive)
}
