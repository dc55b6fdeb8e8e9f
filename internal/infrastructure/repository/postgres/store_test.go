package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
	"github.com/obralink/compliance-engine/internal/infrastructure/resilience"
)

var folderCols = []string{
	"id", "category", "parent_id", "subject_name", "status", "version",
	"submitted_at", "submitted_by", "notification_emails",
	"reviewed_at", "reviewer_id", "review_comments",
	"created_at", "updated_at",
}

var documentCols = []string{
	"id", "folder_id", "category", "doc_type", "status",
	"name", "url", "content_type", "size_bytes",
	"uploaded_at", "uploaded_by", "expiration_date", "expiry_notified_at",
	"review_notes", "review_date", "reviewed_by",
	"created_at", "updated_at",
}

func folderRow(version int64, status string) *sqlmock.Rows {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(folderCols).AddRow(
		"folder-1", "worker_labor", "parent-1", "Maria Lopez", status, version,
		nil, "", []byte(`["boss@x.io"]`),
		nil, "", "",
		now, now,
	)
}

func newMockStore(t *testing.T, executor *resilience.Executor) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, executor), mock
}

func TestGetFolder(t *testing.T) {
	store, mock := newMockStore(t, nil)
	mock.ExpectQuery("SELECT (.+) FROM folders").
		WithArgs("folder-1").
		WillReturnRows(folderRow(3, "draft"))

	folder, err := store.GetFolder(context.Background(), "folder-1")
	if err != nil {
		t.Fatalf("GetFolder() error = %v", err)
	}
	if folder.Version != 3 || folder.Category != domain.FolderWorkerLabor {
		t.Fatalf("unexpected folder %+v", folder)
	}
	if len(folder.AdditionalNotificationEmails) != 1 || folder.AdditionalNotificationEmails[0] != "boss@x.io" {
		t.Fatalf("emails not decoded: %v", folder.AdditionalNotificationEmails)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetFolderNotFound(t *testing.T) {
	store, mock := newMockStore(t, nil)
	mock.ExpectQuery("SELECT (.+) FROM folders").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetFolder(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetParentNotFound(t *testing.T) {
	store, mock := newMockStore(t, nil)
	mock.ExpectQuery("SELECT (.+) FROM parent_folders").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetParent(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListExpiring(t *testing.T) {
	store, mock := newMockStore(t, nil)
	expires := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(documentCols).AddRow(
		"doc-medical", "folder-1", "personnel", "medical_exam", "approved",
		"medical.pdf", "s3://bucket/medical", "application/pdf", int64(2048),
		nil, "", expires, nil,
		"", nil, "",
		now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("approved", sqlmock.AnyArg()).
		WillReturnRows(rows)

	docs, err := store.ListExpiring(context.Background(), expires.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListExpiring() error = %v", err)
	}
	if len(docs) != 1 || docs[0].Type != domain.TypeMedicalExam {
		t.Fatalf("unexpected docs %+v", docs)
	}
	if docs[0].ExpirationDate == nil || !docs[0].ExpirationDate.Equal(expires) {
		t.Fatalf("expiration date = %v", docs[0].ExpirationDate)
	}
}

func TestMarkExpiryNotified(t *testing.T) {
	store, mock := newMockStore(t, nil)
	at := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE documents").
		WithArgs("folder-1", "doc-medical", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.MarkExpiryNotified(context.Background(), "folder-1", "doc-medical", at); err != nil {
		t.Fatalf("MarkExpiryNotified() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMarkExpiryNotifiedUnknownDocument(t *testing.T) {
	store, mock := newMockStore(t, nil)
	mock.ExpectExec("UPDATE documents").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.MarkExpiryNotified(context.Background(), "folder-1", "missing", time.Now().UTC())
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func expectMutationLoad(mock sqlmock.Sqlmock, version int64, status string) {
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM folders").
		WithArgs("folder-1").
		WillReturnRows(folderRow(version, status))
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("folder-1").
		WillReturnRows(sqlmock.NewRows(documentCols))
}

func saveSubmitted(m ports.FolderMutation) error {
	folder := *m.Folder()
	folder.Status = domain.FolderSubmitted
	return m.SaveFolder(folder)
}

func TestMutateCommitsWithVersionBump(t *testing.T) {
	store, mock := newMockStore(t, nil)

	expectMutationLoad(mock, 3, "draft")
	mock.ExpectExec("UPDATE folders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Mutate(context.Background(), "folder-1", saveSubmitted)
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMutateStaleVersionConflict(t *testing.T) {
	store, mock := newMockStore(t, nil)

	expectMutationLoad(mock, 3, "draft")
	mock.ExpectExec("UPDATE folders").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.Mutate(context.Background(), "folder-1", saveSubmitted)
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMutateRetriesConflictThenSucceeds(t *testing.T) {
	store, mock := newMockStore(t, resilience.NewExecutor(resilience.PersistenceRetryConfig()))

	// First attempt loses the version race, second runs against fresh state.
	expectMutationLoad(mock, 3, "draft")
	mock.ExpectExec("UPDATE folders").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	expectMutationLoad(mock, 4, "draft")
	mock.ExpectExec("UPDATE folders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Mutate(context.Background(), "folder-1", saveSubmitted)
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMutateExhaustedConflictIsTemporary(t *testing.T) {
	store, mock := newMockStore(t, resilience.NewExecutor(resilience.PersistenceRetryConfig()))

	for i := 0; i < 4; i++ {
		expectMutationLoad(mock, 3, "draft")
		mock.ExpectExec("UPDATE folders").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()
	}

	err := store.Mutate(context.Background(), "folder-1", saveSubmitted)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary after exhausted retries, got %v", err)
	}
}

func TestMutateCallbackErrorRollsBack(t *testing.T) {
	store, mock := newMockStore(t, nil)

	expectMutationLoad(mock, 3, "approved")
	mock.ExpectRollback()

	err := store.Mutate(context.Background(), "folder-1", func(m ports.FolderMutation) error {
		return domain.WrapError(domain.ErrFolderLocked, "upload document", errors.New("folder folder-1 is submitted"))
	})
	if !domain.IsKind(err, domain.ErrFolderLocked) {
		t.Fatalf("expected callback error passthrough, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
