package surface

import (
	"errors"
	"fmt"
)

// ErrConfiguration indicates an animation configuration that cannot be
// evaluated: a short or duplicated variable set, inverted bounds, an empty
// grid or an unparsable function.
var ErrConfiguration = errors.New("surface: invalid configuration")

// ConfigError names the offending field.
type ConfigError struct {
	Field   string
	Message string
	Wrapped error
}

func (e *ConfigError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrConfiguration, e.Field, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Message)
}

func (e *ConfigError) Unwrap() []error {
	if e.Wrapped != nil {
		return []error{ErrConfiguration, e.Wrapped}
	}
	return []error{ErrConfiguration}
}

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}
