package settings

import (
	"errors"
	"fmt"
)

// ErrInvalidBusinessHours is returned when the business-hours window is out of range or inverted.
var ErrInvalidBusinessHours = errors.New("start time must be earlier than end time")

// ErrUnsupportedBackend indicates that no settings backend exists for a store kind
type ErrUnsupportedBackend struct {
	Kind string
}

func (e *ErrUnsupportedBackend) Error() string {
	return fmt.Sprintf("unsupported settings backend: %s", e.Kind)
}

// IsUnsupportedBackendError checks if an error is an ErrUnsupportedBackend error
func IsUnsupportedBackendError(err error) bool {
	var target *ErrUnsupportedBackend
	return errors.As(err, &target)
}
