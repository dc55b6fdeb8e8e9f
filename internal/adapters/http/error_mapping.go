package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/obralink/compliance-engine/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrFolderLocked),
		domain.IsKind(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrIncompleteChecklist),
		domain.IsKind(err, domain.ErrMissingRejectionReason):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrConflict),
		domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error   string                `json:"error"`
	Missing []domain.DocumentType `json:"missing,omitempty"`
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs.
		slog.Error("internal_error", "error", err)
		message = "internal error"
	}
	writeJSON(w, status, errorResponse{
		Error:   message,
		Missing: domain.MissingTypes(err),
	})
}
