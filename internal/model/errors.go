package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a session has no transcript segments.
var ErrNotFound = errors.New("not found")

// ConfigurationError reports a deployment-time defect in dictionary data.
// It is fatal at load time and never produced per analysis call.
type ConfigurationError struct {
	Source string // file path or "builtin"
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Source, e.Reason)
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
