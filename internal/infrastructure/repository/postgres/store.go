package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/infrastructure/resilience"
)

type Store struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewStore(db *sql.DB, executor *resilience.Executor) *Store {
	return &Store{db: db, executor: executor}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS parent_folders (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	company_name TEXT NOT NULL,
	period TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS folders (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	parent_id TEXT REFERENCES parent_folders(id),
	subject_name TEXT NOT NULL,
	status TEXT NOT NULL,
	version BIGINT NOT NULL DEFAULT 1,
	submitted_at TIMESTAMPTZ,
	submitted_by TEXT,
	notification_emails JSONB NOT NULL DEFAULT '[]'::jsonb,
	reviewed_at TIMESTAMPTZ,
	reviewer_id TEXT,
	review_comments TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	folder_id TEXT NOT NULL REFERENCES folders(id),
	category TEXT NOT NULL,
	doc_type TEXT NOT NULL,
	status TEXT NOT NULL,
	name TEXT,
	url TEXT,
	content_type TEXT,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	uploaded_at TIMESTAMPTZ,
	uploaded_by TEXT,
	expiration_date TIMESTAMPTZ,
	expiry_notified_at TIMESTAMPTZ,
	review_notes TEXT,
	review_date TIMESTAMPTZ,
	reviewed_by TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (folder_id, doc_type)
);

CREATE INDEX IF NOT EXISTS idx_folders_parent_id ON folders(parent_id);
CREATE INDEX IF NOT EXISTS idx_folders_status ON folders(status);
CREATE INDEX IF NOT EXISTS idx_documents_folder_id ON documents(folder_id);
CREATE INDEX IF NOT EXISTS idx_documents_expiration ON documents(expiration_date) WHERE expiration_date IS NOT NULL;
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const folderColumns = `id, category, COALESCE(parent_id, ''), subject_name, status, version, submitted_at, COALESCE(submitted_by, ''), notification_emails, reviewed_at, COALESCE(reviewer_id, ''), COALESCE(review_comments, ''), created_at, updated_at`

const documentColumns = `id, folder_id, category, doc_type, status, COALESCE(name, ''), COALESCE(url, ''), COALESCE(content_type, ''), size_bytes, uploaded_at, COALESCE(uploaded_by, ''), expiration_date, expiry_notified_at, COALESCE(review_notes, ''), review_date, COALESCE(reviewed_by, ''), created_at, updated_at`

func (s *Store) GetFolder(ctx context.Context, folderID string) (*domain.Folder, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+folderColumns+`
FROM folders
WHERE id = $1
`, folderID)
	return scanFolder(row, folderID)
}

func (s *Store) GetDocument(ctx context.Context, folderID, documentID string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE folder_id = $1 AND id = $2
`, folderID, documentID)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("document %s", documentID))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (s *Store) ListDocuments(ctx context.Context, folderID string) ([]domain.Document, error) {
	return listDocuments(ctx, s.db, folderID)
}

func (s *Store) GetParent(ctx context.Context, parentID string) (*domain.ParentFolder, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, kind, company_name, COALESCE(period, ''), created_at
FROM parent_folders
WHERE id = $1
`, parentID)

	var parent domain.ParentFolder
	var kind string
	err := row.Scan(&parent.ID, &kind, &parent.CompanyName, &parent.Period, &parent.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get parent", fmt.Errorf("parent %s", parentID))
		}
		return nil, fmt.Errorf("scan parent: %w", err)
	}
	parent.Kind = domain.ParentKind(kind)
	return &parent, nil
}

func (s *Store) ListChildFolders(ctx context.Context, parentID string) ([]domain.Folder, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+folderColumns+`
FROM folders
WHERE parent_id = $1
ORDER BY created_at, id
`, parentID)
	if err != nil {
		return nil, fmt.Errorf("query child folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.Folder
	for rows.Next() {
		folder, err := scanFolderRow(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate child folders: %w", err)
	}
	return folders, nil
}

func (s *Store) ListExpiring(ctx context.Context, deadline time.Time) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE status = $1 AND expiration_date IS NOT NULL AND expiration_date <= $2 AND expiry_notified_at IS NULL
ORDER BY expiration_date, id
`, string(domain.DocumentApproved), deadline)
	if err != nil {
		return nil, fmt.Errorf("query expiring documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expiring document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expiring documents: %w", err)
	}
	return docs, nil
}

func (s *Store) MarkExpiryNotified(ctx context.Context, folderID, documentID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE documents
SET expiry_notified_at = $3, updated_at = $3
WHERE folder_id = $1 AND id = $2
`, folderID, documentID, at)
	if err != nil {
		return fmt.Errorf("mark expiry notified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark expiry notified rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "mark expiry notified", fmt.Errorf("document %s", documentID))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner, folderID string) (*domain.Folder, error) {
	folder, err := scanFolderRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get folder", fmt.Errorf("folder %s", folderID))
		}
		return nil, err
	}
	return folder, nil
}

func scanFolderRow(row rowScanner) (*domain.Folder, error) {
	var folder domain.Folder
	var category, status string
	var emailsRaw []byte

	err := row.Scan(
		&folder.ID, &category, &folder.ParentID, &folder.SubjectName, &status, &folder.Version,
		&folder.SubmittedAt, &folder.SubmittedByID, &emailsRaw,
		&folder.ReviewedAt, &folder.ReviewerID, &folder.ReviewComments,
		&folder.CreatedAt, &folder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan folder: %w", err)
	}

	if err := json.Unmarshal(emailsRaw, &folder.AdditionalNotificationEmails); err != nil {
		return nil, fmt.Errorf("unmarshal notification emails: %w", err)
	}
	folder.Category = domain.FolderCategory(category)
	folder.Status = domain.FolderStatus(status)
	return &folder, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var category, docType, status string

	err := row.Scan(
		&doc.ID, &doc.FolderID, &category, &docType, &status,
		&doc.Name, &doc.URL, &doc.ContentType, &doc.Size,
		&doc.UploadedAt, &doc.UploadedByID, &doc.ExpirationDate, &doc.ExpiryNotifiedAt,
		&doc.ReviewNotes, &doc.ReviewDate, &doc.ReviewedByID,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Category = domain.DocumentCategory(category)
	doc.Type = domain.DocumentType(docType)
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listDocuments(ctx context.Context, q queryer, folderID string) ([]domain.Document, error) {
	rows, err := q.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE folder_id = $1
ORDER BY created_at, id
`, folderID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
