package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/obralink/compliance-engine/internal/core/catalog"
	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/infrastructure/repository/postgres"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type publisherFake struct {
	events []domain.Event
	err    error
}

func (f *publisherFake) Publish(_ context.Context, event domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type observerFake struct {
	transitions []domain.FolderStatus
}

func (f *observerFake) FolderTransition(_ domain.FolderCategory, to domain.FolderStatus) {
	f.transitions = append(f.transitions, to)
}

type notifierFake struct {
	sent    []domain.Notification
	failFor map[string]bool
	err     error
}

func (f *notifierFake) Send(_ context.Context, notification domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	if len(notification.Recipients) == 1 && f.failFor[notification.Recipients[0]] {
		return errAddressBounced
	}
	f.sent = append(f.sent, notification)
	return nil
}

var errAddressBounced = domain.WrapError(domain.ErrTemporary, "send mail", context.DeadlineExceeded)

func testCatalog() *catalog.Catalog {
	return catalog.Default()
}

// seedLaborFolder seeds a worker_labor folder; its checklist requires payroll
// and social_security_payment, with attendance_record optional.
func seedLaborFolder(store *postgres.MemoryStore, status domain.FolderStatus, docs ...domain.Document) domain.Folder {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	folder := domain.Folder{
		ID:          "folder-1",
		Category:    domain.FolderWorkerLabor,
		ParentID:    "parent-1",
		SubjectName: "Maria Lopez",
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	store.SeedFolder(folder, docs...)
	return folder
}

func contentDoc(id string, docType domain.DocumentType, status domain.DocumentStatus) domain.Document {
	created := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)
	return domain.Document{
		ID:        id,
		FolderID:  "folder-1",
		Category:  domain.CategoryPersonnel,
		Type:      docType,
		Status:    status,
		Name:      string(docType) + ".pdf",
		URL:       "s3://bucket/" + id,
		CreatedAt: created,
		UpdatedAt: created,
	}
}
