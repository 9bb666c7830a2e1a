package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidID      = errors.New("invalid ID")
	ErrUnknownModel   = errors.New("unknown model")
	ErrGenerationFail = errors.New("generation failed")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// GenerationError represents a provider-side generation failure tied to a
// tracked job.
type GenerationError struct {
	JobID  int64
	Model  string
	Reason string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("job %d (%s): %s", e.JobID, e.Model, e.Reason)
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFail
}
