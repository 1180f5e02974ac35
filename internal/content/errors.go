package content

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed matches every *FetchError.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNotAuthenticated is returned when an operation needs a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrClosed is returned by operations on a closed Feed or Favourites.
	ErrClosed = errors.New("closed")
	// ErrNoItem is returned when a feed has nothing to act on.
	ErrNoItem = errors.New("no item to act on")
)

// FetchError wraps a failed remote call.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}
