package ports

import (
	"context"
	"time"

	"github.com/obralink/compliance-engine/internal/core/domain"
)

// Actor is the pre-authorized identity supplied by the auth collaborator.
// The engine trusts it and only checks role-appropriateness per operation.
type Actor struct {
	ID   string
	Role string
}

const (
	RoleContractor = "contractor"
	RoleReviewer   = "reviewer"
)

// FolderView is the read model for a single folder.
type FolderView struct {
	Folder               domain.Folder         `json:"folder"`
	Documents            []domain.Document     `json:"documents"`
	MissingRequired      []domain.DocumentType `json:"missing_required"`
	CompletionPercentage float64               `json:"completion_percentage"`
}

// ParentView is the hierarchy read model: derived on demand from the child
// folders, never an input to a child's own transitions.
type ParentView struct {
	Parent               domain.ParentFolder `json:"parent"`
	Children             []domain.Folder     `json:"children"`
	CompletionPercentage float64             `json:"completion_percentage"`
	PendingReview        bool                `json:"pending_review"`
}

// DocumentUploader is the inbound contract for attaching uploaded content to
// a checklist slot.
type DocumentUploader interface {
	UploadDocument(ctx context.Context, folderID string, docType domain.DocumentType, content domain.Content, actor Actor) (*domain.Document, error)
}

// FolderSubmitter sends a complete folder for review.
type FolderSubmitter interface {
	SubmitFolder(ctx context.Context, folderID string, actor Actor, notificationEmails []string) (*domain.Folder, error)
}

// DocumentReviewer records an approve/reject decision on one document.
type DocumentReviewer interface {
	ReviewDocument(ctx context.Context, folderID, documentID string, decision domain.ReviewDecision, actor Actor, notes string) (*domain.Folder, error)
}

// FolderReader is the inbound read contract for folder and hierarchy views.
type FolderReader interface {
	GetFolderView(ctx context.Context, folderID string) (*FolderView, error)
	GetParentView(ctx context.Context, parentID string) (*ParentView, error)
}

// ExpiryScanner emits reminder events for documents expiring soon.
type ExpiryScanner interface {
	ScanExpiring(ctx context.Context, within time.Duration) (int, error)
}
