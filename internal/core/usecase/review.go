package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/obralink/compliance-engine/internal/core/catalog"
	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
)

type ReviewDocumentUseCase struct {
	store     ports.FolderStore
	catalog   *catalog.Catalog
	publisher ports.EventPublisher
	logger    *slog.Logger
	observer  ports.TransitionObserver
}

func NewReviewDocumentUseCase(
	store ports.FolderStore,
	cat *catalog.Catalog,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	observer ports.TransitionObserver,
) *ReviewDocumentUseCase {
	return &ReviewDocumentUseCase{
		store:     store,
		catalog:   cat,
		publisher: publisher,
		logger:    logger,
		observer:  observer,
	}
}

// ReviewDocument records an approve/reject decision on a submitted document
// and re-aggregates the folder. When the aggregate flips to approved or
// rejected, folder-level review metadata is recorded and the matching event
// is published after commit.
func (uc *ReviewDocumentUseCase) ReviewDocument(
	ctx context.Context,
	folderID, documentID string,
	decision domain.ReviewDecision,
	actor ports.Actor,
	notes string,
) (*domain.Folder, error) {
	if actor.Role != ports.RoleReviewer {
		return nil, domain.WrapError(domain.ErrUnauthorized, "review document",
			fmt.Errorf("role %q may not review", actor.Role))
	}
	if decision != domain.DecisionApprove && decision != domain.DecisionReject {
		return nil, domain.WrapError(domain.ErrInvalidInput, "review document",
			fmt.Errorf("unknown decision %q", decision))
	}
	if decision == domain.DecisionReject && strings.TrimSpace(notes) == "" {
		return nil, domain.WrapError(domain.ErrMissingRejectionReason, "review document",
			errors.New("rejection requires notes"))
	}

	var (
		out     domain.Folder
		event   domain.Event
		flipped bool
	)
	err := uc.store.Mutate(ctx, folderID, func(m ports.FolderMutation) error {
		folder := m.Folder()
		if folder.Status == domain.FolderApproved {
			return domain.WrapError(domain.ErrFolderLocked, "review document",
				fmt.Errorf("folder %s is approved", folder.ID))
		}

		doc := findByID(m.Documents(), documentID)
		if doc == nil {
			return domain.WrapError(domain.ErrNotFound, "review document",
				fmt.Errorf("document %s not in folder %s", documentID, folder.ID))
		}
		if doc.Status != domain.DocumentSubmitted {
			return domain.WrapError(domain.ErrInvalidTransition, "review document",
				fmt.Errorf("document %s is %s, expected submitted", doc.ID, doc.Status))
		}

		now := time.Now().UTC()
		if decision == domain.DecisionApprove {
			doc.Status = domain.DocumentApproved
		} else {
			doc.Status = domain.DocumentRejected
		}
		doc.ReviewNotes = notes
		doc.ReviewDate = &now
		doc.ReviewedByID = actor.ID
		doc.UpdatedAt = now
		if err := m.UpdateDocument(*doc); err != nil {
			return fmt.Errorf("record review: %w", err)
		}

		previous := folder.Status
		status, err := recomputeWithReview(uc.catalog, m, now, actor.ID, notes)
		if err != nil {
			return err
		}

		flipped = status != previous &&
			(status == domain.FolderApproved || status == domain.FolderRejected)
		if flipped {
			kind := domain.EventFolderApproved
			var rejected []domain.RejectedDocument
			if status == domain.FolderRejected {
				kind = domain.EventFolderRejected
				rejected = rejectedDocuments(m.Documents())
			}
			event = domain.Event{
				Kind:              kind,
				FolderID:          folder.ID,
				Category:          folder.Category,
				SubjectName:       folder.SubjectName,
				OccurredAt:        now,
				SubmittedByID:     folder.SubmittedByID,
				Recipients:        eventRecipients(*folder),
				RejectedDocuments: rejected,
			}
		}

		out = *folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	if flipped {
		uc.observer.FolderTransition(out.Category, out.Status)
		publishCommitted(ctx, uc.publisher, uc.logger, event)
	}
	return &out, nil
}

// recomputeWithReview derives the new folder status and stamps folder-level
// review metadata when the aggregate settles on approved or rejected.
func recomputeWithReview(
	cat *catalog.Catalog,
	m ports.FolderMutation,
	now time.Time,
	reviewerID, comments string,
) (domain.FolderStatus, error) {
	folder := m.Folder()
	checklist, ok := cat.Checklist(folder.Category)
	if !ok {
		return "", fmt.Errorf("recompute folder %s: unknown category %q", folder.ID, folder.Category)
	}

	status := domain.DeriveStatus(checklist.Entries, m.Documents())
	if status == domain.FolderApproved || status == domain.FolderRejected {
		folder.ReviewedAt = &now
		folder.ReviewerID = reviewerID
		folder.ReviewComments = comments
	}
	folder.Status = status
	folder.UpdatedAt = now
	if err := m.SaveFolder(*folder); err != nil {
		return "", fmt.Errorf("save folder: %w", err)
	}
	return status, nil
}

func findByID(docs []domain.Document, documentID string) *domain.Document {
	for i := range docs {
		if docs[i].ID == documentID {
			return &docs[i]
		}
	}
	return nil
}

func rejectedDocuments(docs []domain.Document) []domain.RejectedDocument {
	var rejected []domain.RejectedDocument
	for _, doc := range docs {
		if doc.Status != domain.DocumentRejected {
			continue
		}
		rejected = append(rejected, domain.RejectedDocument{
			DocumentID: doc.ID,
			Type:       doc.Type,
			Notes:      doc.ReviewNotes,
		})
	}
	return rejected
}
