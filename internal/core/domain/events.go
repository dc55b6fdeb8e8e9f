package domain

import "time"

type EventKind string

const (
	EventFolderSubmitted  EventKind = "folder.submitted"
	EventFolderApproved   EventKind = "folder.approved"
	EventFolderRejected   EventKind = "folder.rejected"
	EventDocumentExpiring EventKind = "document.expiring"
)

// RejectedDocument is the per-document detail attached to a rejection event so
// the notification can tell the submitter what to fix.
type RejectedDocument struct {
	DocumentID string       `json:"document_id"`
	Type       DocumentType `json:"type"`
	Notes      string       `json:"notes"`
}

// Event is the payload published after a transition commits. Publication is
// fire-and-forget relative to the transition; a lost event never rolls back
// folder state.
type Event struct {
	Kind        EventKind      `json:"kind"`
	FolderID    string         `json:"folder_id"`
	Category    FolderCategory `json:"category"`
	SubjectName string         `json:"subject_name"`
	OccurredAt  time.Time      `json:"occurred_at"`

	SubmittedByID string   `json:"submitted_by_id,omitempty"`
	Recipients    []string `json:"recipients,omitempty"`

	RejectedDocuments []RejectedDocument `json:"rejected_documents,omitempty"`

	DocumentID string     `json:"document_id,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}
