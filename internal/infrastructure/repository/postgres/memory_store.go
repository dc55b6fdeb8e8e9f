package postgres

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
)

// MemoryStore is a mutex-guarded FolderStore for tests and local development.
// Mutations are applied to copies and committed atomically, so a failing
// callback leaves no partial state behind.
type MemoryStore struct {
	mu      sync.Mutex
	parents map[string]domain.ParentFolder
	folders map[string]domain.Folder
	docs    map[string]map[string]domain.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		parents: make(map[string]domain.ParentFolder),
		folders: make(map[string]domain.Folder),
		docs:    make(map[string]map[string]domain.Document),
	}
}

// SeedParent and SeedFolder stand in for the external provisioning
// collaborator.
func (s *MemoryStore) SeedParent(parent domain.ParentFolder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parents[parent.ID] = parent
}

func (s *MemoryStore) SeedFolder(folder domain.Folder, docs ...domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if folder.Version == 0 {
		folder.Version = 1
	}
	s.folders[folder.ID] = folder
	byID := make(map[string]domain.Document, len(docs))
	for _, d := range docs {
		d.FolderID = folder.ID
		byID[d.ID] = d
	}
	s.docs[folder.ID] = byID
}

func (s *MemoryStore) GetFolder(_ context.Context, folderID string) (*domain.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	folder, ok := s.folders[folderID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get folder", fmt.Errorf("folder %s", folderID))
	}
	out := folder
	return &out, nil
}

func (s *MemoryStore) GetDocument(_ context.Context, folderID, documentID string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[folderID][documentID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("document %s", documentID))
	}
	out := doc
	return &out, nil
}

func (s *MemoryStore) ListDocuments(_ context.Context, folderID string) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[folderID]; !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "list documents", fmt.Errorf("folder %s", folderID))
	}
	return sortedDocs(s.docs[folderID]), nil
}

func (s *MemoryStore) GetParent(_ context.Context, parentID string) (*domain.ParentFolder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, ok := s.parents[parentID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get parent", fmt.Errorf("parent %s", parentID))
	}
	out := parent
	return &out, nil
}

func (s *MemoryStore) ListChildFolders(_ context.Context, parentID string) ([]domain.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var children []domain.Folder
	for _, folder := range s.folders {
		if folder.ParentID == parentID {
			children = append(children, folder)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	return children, nil
}

func (s *MemoryStore) ListExpiring(_ context.Context, deadline time.Time) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expiring []domain.Document
	for _, byID := range s.docs {
		for _, doc := range byID {
			if doc.Status != domain.DocumentApproved || doc.ExpirationDate == nil || doc.ExpiryNotifiedAt != nil {
				continue
			}
			if !doc.ExpirationDate.After(deadline) {
				expiring = append(expiring, doc)
			}
		}
	}
	sort.Slice(expiring, func(i, j int) bool { return expiring[i].ID < expiring[j].ID })
	return expiring, nil
}

func (s *MemoryStore) MarkExpiryNotified(_ context.Context, folderID, documentID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[folderID][documentID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "mark expiry notified", fmt.Errorf("document %s", documentID))
	}
	doc.ExpiryNotifiedAt = &at
	doc.UpdatedAt = at
	s.docs[folderID][documentID] = doc
	return nil
}

func (s *MemoryStore) Mutate(_ context.Context, folderID string, fn func(m ports.FolderMutation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[folderID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "mutate folder", fmt.Errorf("folder %s", folderID))
	}

	m := &memoryMutation{
		folder: folder,
		docs:   sortedDocs(s.docs[folderID]),
	}
	if err := fn(m); err != nil {
		return err
	}

	if m.folderSaved || m.docsWritten {
		m.folder.Version = folder.Version + 1
		s.folders[folderID] = m.folder
		byID := make(map[string]domain.Document, len(m.docs))
		for _, d := range m.docs {
			byID[d.ID] = d
		}
		s.docs[folderID] = byID
	}
	return nil
}

type memoryMutation struct {
	folder      domain.Folder
	docs        []domain.Document
	folderSaved bool
	docsWritten bool
}

func (m *memoryMutation) Folder() *domain.Folder { return &m.folder }

func (m *memoryMutation) Documents() []domain.Document {
	out := make([]domain.Document, len(m.docs))
	copy(out, m.docs)
	return out
}

func (m *memoryMutation) UpsertDocument(doc domain.Document) error {
	m.docsWritten = true
	for i := range m.docs {
		if m.docs[i].ID == doc.ID {
			m.docs[i] = doc
			return nil
		}
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memoryMutation) UpdateDocument(doc domain.Document) error {
	for i := range m.docs {
		if m.docs[i].ID == doc.ID {
			m.docs[i] = doc
			m.docsWritten = true
			return nil
		}
	}
	return domain.WrapError(domain.ErrNotFound, "update document", fmt.Errorf("document %s", doc.ID))
}

func (m *memoryMutation) SaveFolder(folder domain.Folder) error {
	m.folder = folder
	m.folderSaved = true
	return nil
}

func sortedDocs(byID map[string]domain.Document) []domain.Document {
	docs := make([]domain.Document, 0, len(byID))
	for _, d := range byID {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs
}
