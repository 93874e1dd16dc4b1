package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrPersistence   = errors.New("persistence error")
	ErrTransient     = errors.New("transient failure")
)

// FailureKind names the taxonomy bucket of a job failure for logging.
type FailureKind string

const (
	FailureConfiguration FailureKind = "configuration"
	FailureExecution     FailureKind = "execution"
	FailurePersistence   FailureKind = "persistence"
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to the failure bucket reported alongside the job.
// Configuration and validation faults are permanent; everything else is an
// execution fault unless it came from the history store.
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return FailureConfiguration
	case errors.Is(err, ErrPersistence):
		return FailurePersistence
	default:
		return FailureExecution
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
