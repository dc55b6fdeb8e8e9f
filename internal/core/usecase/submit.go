package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/obralink/compliance-engine/internal/core/catalog"
	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
)

type SubmitFolderUseCase struct {
	store     ports.FolderStore
	catalog   *catalog.Catalog
	publisher ports.EventPublisher
	logger    *slog.Logger
	observer  ports.TransitionObserver
}

func NewSubmitFolderUseCase(
	store ports.FolderStore,
	cat *catalog.Catalog,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	observer ports.TransitionObserver,
) *SubmitFolderUseCase {
	return &SubmitFolderUseCase{
		store:     store,
		catalog:   cat,
		publisher: publisher,
		logger:    logger,
		observer:  observer,
	}
}

// SubmitFolder sends a complete folder for review. Legal only from draft or
// rejected; every required checklist slot must carry content, otherwise the
// call fails with the exact missing list.
func (uc *SubmitFolderUseCase) SubmitFolder(
	ctx context.Context,
	folderID string,
	actor ports.Actor,
	notificationEmails []string,
) (*domain.Folder, error) {
	if actor.ID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit folder", errors.New("actor id is required"))
	}

	var (
		out   domain.Folder
		event domain.Event
	)
	err := uc.store.Mutate(ctx, folderID, func(m ports.FolderMutation) error {
		folder := m.Folder()
		switch folder.Status {
		case domain.FolderApproved:
			return domain.WrapError(domain.ErrFolderLocked, "submit folder",
				fmt.Errorf("folder %s is approved", folder.ID))
		case domain.FolderSubmitted:
			return domain.WrapError(domain.ErrInvalidTransition, "submit folder",
				fmt.Errorf("folder %s is already submitted", folder.ID))
		}

		checklist, ok := uc.catalog.Checklist(folder.Category)
		if !ok {
			return fmt.Errorf("submit folder %s: unknown category %q", folder.ID, folder.Category)
		}
		if missing := domain.MissingRequired(checklist.Entries, m.Documents()); len(missing) > 0 {
			return &domain.IncompleteChecklistError{Missing: missing}
		}
		if folder.Status == domain.FolderRejected {
			// A rejected slot with no fresh upload would immediately derive
			// rejected again; refuse the submit up front instead.
			if stale := domain.RejectedRequired(checklist.Entries, m.Documents()); len(stale) > 0 {
				return domain.WrapError(domain.ErrInvalidTransition, "submit folder",
					fmt.Errorf("folder %s has rejected documents awaiting re-upload: %s",
						folder.ID, domain.JoinTypes(stale)))
			}
		}

		now := time.Now().UTC()
		for _, doc := range m.Documents() {
			if doc.Status != domain.DocumentDraft || !doc.HasContent() {
				continue
			}
			doc.Status = domain.DocumentSubmitted
			doc.UpdatedAt = now
			if err := m.UpdateDocument(doc); err != nil {
				return fmt.Errorf("mark document submitted: %w", err)
			}
		}

		folder.SubmittedAt = &now
		folder.SubmittedByID = actor.ID
		folder.AdditionalNotificationEmails = domain.DedupeEmails(notificationEmails)

		status, err := recompute(uc.catalog, m, now)
		if err != nil {
			return err
		}
		if status != domain.FolderSubmitted {
			return fmt.Errorf("submit folder %s: recompute yielded %s", folder.ID, status)
		}

		out = *folder
		event = domain.Event{
			Kind:          domain.EventFolderSubmitted,
			FolderID:      folder.ID,
			Category:      folder.Category,
			SubjectName:   folder.SubjectName,
			OccurredAt:    now,
			SubmittedByID: actor.ID,
			Recipients:    eventRecipients(*folder),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.observer.FolderTransition(out.Category, out.Status)
	publishCommitted(ctx, uc.publisher, uc.logger, event)
	return &out, nil
}
