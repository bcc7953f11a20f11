package tree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrListing is matched by every *ListingError.
var ErrListing = errors.New("listing failed")

// ListingError reports that a tree could not be listed. It is fatal to a
// sync pass: a plan computed from a partial listing could delete live links.
type ListingError struct {
	Err     error
	Backend string
	Root    string
	Stderr  string
}

func (e *ListingError) Error() string {
	msg := fmt.Sprintf("list %s (%s): %v", e.Root, e.Backend, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ListingError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrListing) match any ListingError.
func (*ListingError) Is(target error) bool { return target == ErrListing }

func listingErr(backend, root string, err error) *ListingError {
	return &ListingError{Backend: backend, Root: root, Err: err}
}
