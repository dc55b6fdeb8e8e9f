package usecase

import (
	"context"
	"fmt"

	"github.com/obralink/compliance-engine/internal/core/catalog"
	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
)

// FolderViewUseCase serves the folder and hierarchy read models. Parent-level
// numbers are recomputed from the children on every call; they are views and
// never feed back into a child's transition logic.
type FolderViewUseCase struct {
	store   ports.FolderStore
	catalog *catalog.Catalog
}

func NewFolderViewUseCase(store ports.FolderStore, cat *catalog.Catalog) *FolderViewUseCase {
	return &FolderViewUseCase{store: store, catalog: cat}
}

func (uc *FolderViewUseCase) GetFolderView(ctx context.Context, folderID string) (*ports.FolderView, error) {
	folder, err := uc.store.GetFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("load folder: %w", err)
	}
	docs, err := uc.store.ListDocuments(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	checklist, ok := uc.catalog.Checklist(folder.Category)
	if !ok {
		return nil, fmt.Errorf("folder %s: unknown category %q", folder.ID, folder.Category)
	}

	approved, total := domain.RequiredProgress(checklist.Entries, docs)
	return &ports.FolderView{
		Folder:               *folder,
		Documents:            docs,
		MissingRequired:      domain.MissingRequired(checklist.Entries, docs),
		CompletionPercentage: percentage(approved, total),
	}, nil
}

func (uc *FolderViewUseCase) GetParentView(ctx context.Context, parentID string) (*ports.ParentView, error) {
	parent, err := uc.store.GetParent(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("load parent: %w", err)
	}
	children, err := uc.store.ListChildFolders(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}

	var approvedSum, totalSum int
	pending := false
	for _, child := range children {
		checklist, ok := uc.catalog.Checklist(child.Category)
		if !ok {
			return nil, fmt.Errorf("folder %s: unknown category %q", child.ID, child.Category)
		}
		docs, err := uc.store.ListDocuments(ctx, child.ID)
		if err != nil {
			return nil, fmt.Errorf("list documents for %s: %w", child.ID, err)
		}
		approved, total := domain.RequiredProgress(checklist.Entries, docs)
		approvedSum += approved
		totalSum += total
		if child.Status == domain.FolderSubmitted {
			pending = true
		}
	}

	return &ports.ParentView{
		Parent:               *parent,
		Children:             children,
		CompletionPercentage: percentage(approvedSum, totalSum),
		PendingReview:        pending,
	}, nil
}

func percentage(approved, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(approved) / float64(total) * 100
}
