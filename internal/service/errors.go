package service

import (
	"fmt"
	"strings"
)

// ConfigError is returned when live mode is selected but required settings are absent.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("live search mode is not configured: missing %s", strings.Join(e.Missing, ", "))
}
