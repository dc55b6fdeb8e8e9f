package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
)

// ExpiryScanUseCase emits reminder events for approved documents whose
// expiration date falls inside the warning window. Runs on the worker's
// daily schedule; each attachment is reminded about once.
type ExpiryScanUseCase struct {
	store     ports.FolderStore
	publisher ports.EventPublisher
	logger    *slog.Logger
}

func NewExpiryScanUseCase(store ports.FolderStore, publisher ports.EventPublisher, logger *slog.Logger) *ExpiryScanUseCase {
	return &ExpiryScanUseCase{store: store, publisher: publisher, logger: logger}
}

func (uc *ExpiryScanUseCase) ScanExpiring(ctx context.Context, within time.Duration) (int, error) {
	deadline := time.Now().UTC().Add(within)
	docs, err := uc.store.ListExpiring(ctx, deadline)
	if err != nil {
		return 0, fmt.Errorf("list expiring documents: %w", err)
	}

	emitted := 0
	for _, doc := range docs {
		folder, err := uc.store.GetFolder(ctx, doc.FolderID)
		if err != nil {
			uc.logger.Error("expiry_scan_folder_load_failed", "folder_id", doc.FolderID, "error", err)
			continue
		}
		event := domain.Event{
			Kind:          domain.EventDocumentExpiring,
			FolderID:      folder.ID,
			Category:      folder.Category,
			SubjectName:   folder.SubjectName,
			OccurredAt:    time.Now().UTC(),
			SubmittedByID: folder.SubmittedByID,
			Recipients:    eventRecipients(*folder),
			DocumentID:    doc.ID,
			ExpiresAt:     doc.ExpirationDate,
		}
		if err := uc.publisher.Publish(ctx, event); err != nil {
			uc.logger.Error("expiry_event_publish_failed", "document_id", doc.ID, "error", err)
			continue
		}
		// Marking failure means at worst one duplicate reminder tomorrow.
		if err := uc.store.MarkExpiryNotified(ctx, doc.FolderID, doc.ID, time.Now().UTC()); err != nil {
			uc.logger.Error("expiry_mark_notified_failed", "document_id", doc.ID, "error", err)
		}
		emitted++
	}
	return emitted, nil
}
