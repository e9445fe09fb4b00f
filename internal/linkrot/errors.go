package linkrot

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed is returned when the store rejects the
	// credentials or the validating probe cannot complete.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrNotAuthenticated is returned when a store call is attempted before
	// Authenticate succeeded.
	ErrNotAuthenticated = errors.New("store client not authenticated")
	// ErrMalformedResponse marks a store response that decoded but lacks
	// required fields, or did not decode at all.
	ErrMalformedResponse = errors.New("malformed store response")
	// ErrResolutionParse marks an archive response missing the expected
	// structure.
	ErrResolutionParse = errors.New("malformed archive response")
)

// StoreError reports a store call that completed with a non-success status
// or an unusable body.
type StoreError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("store %s failed: status %d", e.Op, e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ArchiveError reports a non-success status from the snapshot archive.
type ArchiveError struct {
	StatusCode int
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive lookup failed: status %d", e.StatusCode)
}

// TransportError reports a network call that could not complete.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status carried by a StoreError or
// ArchiveError in err's chain, or 0 when there is none.
func StatusCode(err error) int {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.StatusCode
	}
	var archiveErr *ArchiveError
	if errors.As(err, &archiveErr) {
		return archiveErr.StatusCode
	}
	return 0
}
