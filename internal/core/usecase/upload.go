package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/obralink/compliance-engine/internal/core/catalog"
	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
)

type UploadDocumentUseCase struct {
	store   ports.FolderStore
	catalog *catalog.Catalog
}

func NewUploadDocumentUseCase(store ports.FolderStore, cat *catalog.Catalog) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{store: store, catalog: cat}
}

// UploadDocument attaches uploaded content to a checklist slot. Content may
// only change while the owning folder is draft or rejected; this is the write
// guard that keeps a submission stable while it is under review.
func (uc *UploadDocumentUseCase) UploadDocument(
	ctx context.Context,
	folderID string,
	docType domain.DocumentType,
	content domain.Content,
	actor ports.Actor,
) (*domain.Document, error) {
	if content.URL == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("content url is required"))
	}
	if actor.ID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("actor id is required"))
	}

	var out domain.Document
	err := uc.store.Mutate(ctx, folderID, func(m ports.FolderMutation) error {
		folder := m.Folder()
		if folder.Locked() {
			return domain.WrapError(domain.ErrFolderLocked, "upload document",
				fmt.Errorf("folder %s is %s", folder.ID, folder.Status))
		}
		if !uc.catalog.AllowsType(folder.Category, docType) {
			return domain.WrapError(domain.ErrInvalidInput, "upload document",
				fmt.Errorf("type %s is not part of the %s checklist", docType, folder.Category))
		}

		now := time.Now().UTC()
		doc := findByType(m.Documents(), docType)
		if doc == nil {
			checklist := uc.catalog.MustChecklist(folder.Category)
			doc = &domain.Document{
				ID:        uuid.NewString(),
				FolderID:  folder.ID,
				Category:  checklist.DocCategory,
				Type:      docType,
				CreatedAt: now,
			}
		}

		doc.Name = content.Name
		doc.URL = content.URL
		doc.ContentType = content.ContentType
		doc.Size = content.Size
		doc.Status = domain.DocumentDraft
		doc.UploadedAt = &now
		doc.UploadedByID = actor.ID
		doc.ExpirationDate = content.ExpiresAt
		doc.ExpiryNotifiedAt = nil
		doc.UpdatedAt = now

		// Previous review is superseded by the new content.
		doc.ReviewNotes = ""
		doc.ReviewDate = nil
		doc.ReviewedByID = ""

		if err := m.UpsertDocument(*doc); err != nil {
			return fmt.Errorf("upsert document: %w", err)
		}
		if _, err := recompute(uc.catalog, m, now); err != nil {
			return err
		}

		out = *doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func findByType(docs []domain.Document, docType domain.DocumentType) *domain.Document {
	for i := range docs {
		if docs[i].Type == docType {
			return &docs[i]
		}
	}
	return nil
}
