package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidTTL is returned by Set and GetOrCompute when the TTL is zero or
// negative and is not the NoExpiration sentinel. The store is not mutated.
var ErrInvalidTTL = errors.New("cache: ttl must be positive or NoExpiration")

// ErrInvalidResultType is returned by the generic helpers when the cached
// value does not match the requested type.
var ErrInvalidResultType = errors.New("cache: cached value does not match requested type")

// KeyGenerationError reports that call arguments could not be normalized into
// a stable cache key. Nothing is written to the cache when it is returned.
type KeyGenerationError struct {
	Op     string
	Reason string
	cause  error
}

// Error implements the error interface.
func (e *KeyGenerationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("cache: cannot build key for %q: %s: %v", e.Op, e.Reason, e.cause)
	}
	return fmt.Sprintf("cache: cannot build key for %q: %s", e.Op, e.Reason)
}

// Unwrap exposes the underlying cause, if any.
func (e *KeyGenerationError) Unwrap() error {
	return e.cause
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
