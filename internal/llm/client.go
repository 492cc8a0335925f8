// internal/llm/client.go
package llm

import (
	"context"
	"errors"
	"fmt"
)

// TextGenerator sends one prompt to a text-generation service and returns
// the raw text of the first candidate.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrEmptyResponse is returned when the service answered with no text.
	ErrEmptyResponse = errors.New("text generation returned an empty response")

	// ErrMalformedResponse marks output that failed the strict decode. It is
	// recovered locally by the callers and never returned to clients.
	ErrMalformedResponse = errors.New("text generation returned a malformed response")
)

// ConfigurationError reports missing credentials or settings. It is raised
// when a client is constructed, before any request is served.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("text generation is not configured: %s is missing", e.Setting)
}

// TransportError wraps a failed call to the service (network, auth, quota).
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("text generation call to %s failed: %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
