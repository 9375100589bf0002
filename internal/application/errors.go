package application

import (
	"errors"
	"fmt"

	repo "github.com/oksasatya/go-movie-catalog/internal/domain/repository"
	"github.com/oksasatya/go-movie-catalog/pkg/validation"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrValidationFailed = errors.New("validation failed")
	ErrAccessDenied     = errors.New("access denied")
	// ErrNotFound is the repository sentinel, surfaced unchanged.
	ErrNotFound = repo.ErrNotFound
	ErrStorage  = errors.New("storage error")
)

// ValidationError carries the ordered field violations of a rejected payload.
// It matches ErrValidationFailed with errors.Is.
type ValidationError struct {
	Violations []validation.Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidationFailed.Error()
	}
	return e.Violations[0].Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// StorageError wraps an unclassified persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func mapRepoErr(op string, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrNotOwner):
		return ErrAccessDenied
	default:
		return &StorageError{Op: op, Err: err}
	}
}
