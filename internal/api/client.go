package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	ghapi "github.com/cli/go-gh/v2/pkg/api"
	"github.com/rs/zerolog/log"
)

// RESTClient defines the subset of methods we use from go-gh's REST client.
type RESTClient interface {
	DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error
}

// Options configures the REST client. Empty Token and Host fall back to the
// gh CLI environment (GH_TOKEN, GH_HOST, gh auth config).
type Options struct {
	Host     string
	Token    string
	Timeout  time.Duration
	Attempts int
}

// retryClient wraps a RESTClient and retries transient failures with exponential backoff.
// With Attempts <= 1 it makes a single call and surfaces the failure to the caller.
type retryClient struct {
	inner     RESTClient
	attempts  int
	baseDelay time.Duration
}

func (r *retryClient) DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error {
	var last error
	delay := r.baseDelay
	for i := 0; i < r.attempts; i++ {
		last = r.inner.DoWithContext(ctx, method, path, body, response)
		if last == nil {
			return nil
		}
		if !retriable(last) || i == r.attempts-1 {
			return last
		}
		log.Debug().Err(last).Str("path", path).Int("attempt", i+1).Msg("retrying GitHub request")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return last
}

// retriable reports whether err is worth another attempt: client errors
// (401, 403, 404, 422, ...) are final, server errors and transport failures are not.
func retriable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *ghapi.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

// NewRESTClient returns a go-gh REST client, wrapped with retry/backoff when
// more than one attempt is configured.
func NewRESTClient(opts Options) (RESTClient, error) {
	c, err := ghapi.NewRESTClient(ghapi.ClientOptions{
		Host:      opts.Host,
		AuthToken: opts.Token,
		Timeout:   opts.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if opts.Attempts <= 1 {
		return c, nil
	}
	return &retryClient{inner: c, attempts: opts.Attempts, baseDelay: 500 * time.Millisecond}, nil
}

// NewClient is a variable wrapper around NewRESTClient so tests can override it.
var NewClient = NewRESTClient
