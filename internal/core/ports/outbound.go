package ports

import (
	"context"
	"time"

	"github.com/obralink/compliance-engine/internal/core/domain"
)

// FolderStore persists folders, their documents, and parent aggregates.
//
// Reads may run outside a transaction. Every state change goes through Mutate
// so that the document write, the recomputed folder status, and the version
// bump commit as one unit per folder.
type FolderStore interface {
	GetFolder(ctx context.Context, folderID string) (*domain.Folder, error)
	GetDocument(ctx context.Context, folderID, documentID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, folderID string) ([]domain.Document, error)

	GetParent(ctx context.Context, parentID string) (*domain.ParentFolder, error)
	ListChildFolders(ctx context.Context, parentID string) ([]domain.Folder, error)

	// ListExpiring returns approved documents whose expiration date falls
	// before the deadline and that have not been reminded about yet.
	ListExpiring(ctx context.Context, deadline time.Time) ([]domain.Document, error)

	// MarkExpiryNotified records that an expiry reminder went out for the
	// document; ListExpiring skips it from then on.
	MarkExpiryNotified(ctx context.Context, folderID, documentID string, at time.Time) error

	// Mutate runs fn inside a single transaction scoped to one folder. The
	// folder's version is checked on commit; a concurrent commit aborts the
	// transaction with domain.ErrConflict and nothing is applied.
	Mutate(ctx context.Context, folderID string, fn func(m FolderMutation) error) error
}

// FolderMutation is the transactional view handed to FolderStore.Mutate. The
// folder and document set reflect current committed state as of the
// transaction start.
type FolderMutation interface {
	Folder() *domain.Folder
	Documents() []domain.Document

	UpsertDocument(doc domain.Document) error
	UpdateDocument(doc domain.Document) error

	// SaveFolder persists the folder including its recomputed status. It is
	// the only write path to the status column.
	SaveFolder(folder domain.Folder) error
}

// EventPublisher emits committed transition events. Implementations must not
// be invoked before the owning transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// EventConsumer delivers published events to the notification worker.
type EventConsumer interface {
	Subscribe(ctx context.Context, handler func(context.Context, domain.Event) error) error
}

// Notifier hands a rendered notification to the delivery collaborator. A
// non-nil error reports delivery trouble only; it never affects folder state.
type Notifier interface {
	Send(ctx context.Context, notification domain.Notification) error
}

// TransitionObserver receives committed folder status changes for metrics.
type TransitionObserver interface {
	FolderTransition(category domain.FolderCategory, to domain.FolderStatus)
}

// NopObserver satisfies TransitionObserver without recording anything.
type NopObserver struct{}

func (NopObserver) FolderTransition(domain.FolderCategory, domain.FolderStatus) {}
