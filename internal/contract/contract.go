// Package contract provides configuration, shared interfaces and console
// utilities for the rest of the application.
package contract

import (
	"fmt"
	"net/http"
)

// HTTPDoer is the minimal surface the resilient client needs from
// net/http. It exists so transports can be faked in tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ConfigError reports a missing or malformed configuration value.
// These are fatal at startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}
