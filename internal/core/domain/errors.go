package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrFolderLocked           = errors.New("folder locked")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrIncompleteChecklist    = errors.New("incomplete checklist")
	ErrMissingRejectionReason = errors.New("missing rejection reason")
	ErrConflict               = errors.New("persistence conflict")
	ErrTemporary              = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// IncompleteChecklistError carries the exact list of required types that are
// still missing content, so callers can highlight them.
type IncompleteChecklistError struct {
	Missing []DocumentType
}

func (e *IncompleteChecklistError) Error() string {
	return fmt.Sprintf("incomplete checklist: missing %s", JoinTypes(e.Missing))
}

// JoinTypes renders a document-type list for error messages.
func JoinTypes(types []DocumentType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func (e *IncompleteChecklistError) Unwrap() error {
	return ErrIncompleteChecklist
}

// MissingTypes extracts the missing-type list when err is an incomplete
// checklist failure.
func MissingTypes(err error) []DocumentType {
	var incomplete *IncompleteChecklistError
	if errors.As(err, &incomplete) {
		return incomplete.Missing
	}
	return nil
}
