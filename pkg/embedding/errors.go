package embedding

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("missing embedding credential")
	ErrBadResponse       = errors.New("malformed provider response")
	ErrBatchTooLarge     = errors.New("batch exceeds provider limit")
)

// ConfigurationError is raised while constructing a provider. It is fatal at
// startup.
type ConfigurationError struct {
	Provider string
	Setting  string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("embedding provider %s: %s: %v", e.Provider, e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func missingCredential(provider, setting string) error {
	return &ConfigurationError{Provider: provider, Setting: setting, Err: ErrMissingCredential}
}

// EmbeddingError is any failure of a provider call. StatusCode is 0 when the
// request never got a response.
type EmbeddingError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *EmbeddingError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("embedding provider %s returned %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("embedding provider %s: %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// IsEmbeddingError reports whether err came from a provider call.
func IsEmbeddingError(err error) bool {
	var e *EmbeddingError
	return errors.As(err, &e)
}
