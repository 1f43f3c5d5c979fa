// Package driven defines the driven ports: interfaces the application core
// requires from infrastructure adapters.
package driven

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupportedLocator is the cause carried by a FetchError when no
// registered fetcher recognizes a directive's locator.
var ErrUnsupportedLocator = errors.New("no fetcher recognizes this locator")

// SourceFetcher materializes a remote profile source as a local working tree.
// The core never inspects how retrieval happens (clone, update-in-place, API
// download); it only requires that after a successful Fetch the returned
// directory reflects the latest remote state of the given branch.
type SourceFetcher interface {
	// CanHandle reports whether this fetcher recognizes the locator format.
	CanHandle(locator string) bool

	// Fetch materializes the working tree for (locator, branch) and returns
	// the local directory containing it. Failures are *FetchError.
	Fetch(ctx context.Context, locator, branch string) (string, error)
}

// FetchError reports a failed remote retrieval: network, auth, missing
// branch, or an unrecognized locator.
type FetchError struct {
	Locator string
	Branch  string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s (branch %s): %v", e.Locator, e.Branch, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
