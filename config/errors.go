package config

import "fmt"

// ConfigurationError reports an experiment parameter that cannot be used.
// It is raised before any event is scheduled.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// Errorf creates a ConfigurationError for the given field.
func Errorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}
