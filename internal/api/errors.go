package api

import (
	"errors"
	"fmt"

	ghapi "github.com/cli/go-gh/v2/pkg/api"
)

// ErrorKind classifies fetch failures.
type ErrorKind int

const (
	// KindTransport covers network failures, timeouts and undecodable responses.
	KindTransport ErrorKind = iota
	// KindAPI is a non-2xx answer from the GitHub API.
	KindAPI
)

func (k ErrorKind) String() string {
	if k == KindAPI {
		return "api"
	}
	return "transport"
}

// FetchError is returned by every fetch operation in this package.
type FetchError struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s error (status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	var httpErr *ghapi.HTTPError
	if errors.As(err, &httpErr) {
		return &FetchError{Kind: KindAPI, Op: op, StatusCode: httpErr.StatusCode, Err: err}
	}
	return &FetchError{Kind: KindTransport, Op: op, Err: err}
}
