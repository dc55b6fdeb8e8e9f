package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/obralink/compliance-engine/internal/core/catalog"
	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
)

// recompute derives the folder status from the mutation's current document
// set and persists the folder. It is the only call site of SaveFolder, which
// keeps the stored status a pure cache of the documents.
func recompute(cat *catalog.Catalog, m ports.FolderMutation, now time.Time) (domain.FolderStatus, error) {
	folder := m.Folder()
	checklist, ok := cat.Checklist(folder.Category)
	if !ok {
		return "", fmt.Errorf("recompute folder %s: unknown category %q", folder.ID, folder.Category)
	}

	folder.Status = domain.DeriveStatus(checklist.Entries, m.Documents())
	folder.UpdatedAt = now
	if err := m.SaveFolder(*folder); err != nil {
		return "", fmt.Errorf("save folder: %w", err)
	}
	return folder.Status, nil
}

// publishCommitted emits a transition event after the transaction has
// committed. Folder state is already durable at this point, so a publish
// failure is logged and counted, never surfaced as a transition failure.
func publishCommitted(ctx context.Context, publisher ports.EventPublisher, logger *slog.Logger, event domain.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("event_publish_failed",
			"kind", string(event.Kind),
			"folder_id", event.FolderID,
			"error", err,
		)
	}
}

// eventRecipients is the engine-side recipient list: the submitter plus the
// folder's additional notification emails. The worker appends the reviewer
// pool for submission events.
func eventRecipients(folder domain.Folder) []string {
	recipients := make([]string, 0, len(folder.AdditionalNotificationEmails)+1)
	if folder.SubmittedByID != "" {
		recipients = append(recipients, folder.SubmittedByID)
	}
	recipients = append(recipients, folder.AdditionalNotificationEmails...)
	return domain.DedupeEmails(recipients)
}
