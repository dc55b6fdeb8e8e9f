package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
	"github.com/obralink/compliance-engine/internal/infrastructure/resilience"
)

// Mutate runs fn inside one transaction scoped to the folder. The folder row
// carries a version column checked on commit; when two mutations race, the
// loser aborts with domain.ErrConflict and the resilience executor re-runs
// the whole callback against fresh state, a bounded number of times.
func (s *Store) Mutate(ctx context.Context, folderID string, fn func(m ports.FolderMutation) error) error {
	op := func(ctx context.Context) error {
		return s.mutateOnce(ctx, folderID, fn)
	}
	if s.executor == nil {
		return op(ctx)
	}
	err := s.executor.Execute(ctx, "postgres.mutate", op, classifyMutateError)
	if domain.IsKind(err, domain.ErrConflict) {
		return domain.WrapError(domain.ErrTemporary, "mutate folder", err)
	}
	return err
}

func classifyMutateError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	// Version conflicts are folder-local contention, not backend failure:
	// retry them but keep them out of the breaker counts.
	if domain.IsKind(err, domain.ErrConflict) {
		return resilience.ErrorClassification{Retryable: true}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}

func (s *Store) mutateOnce(ctx context.Context, folderID string, fn func(m ports.FolderMutation) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
SELECT `+folderColumns+`
FROM folders
WHERE id = $1
`, folderID)
	folder, err := scanFolder(row, folderID)
	if err != nil {
		return err
	}

	docs, err := listDocuments(ctx, tx, folderID)
	if err != nil {
		return err
	}

	m := &sqlMutation{
		ctx:         ctx,
		tx:          tx,
		folder:      *folder,
		docs:        docs,
		baseVersion: folder.Version,
	}
	if err := fn(m); err != nil {
		return err
	}

	if m.folderSaved || m.docsWritten {
		if err := m.commitFolder(); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type sqlMutation struct {
	ctx         context.Context
	tx          *sql.Tx
	folder      domain.Folder
	docs        []domain.Document
	baseVersion int64
	folderSaved bool
	docsWritten bool
}

func (m *sqlMutation) Folder() *domain.Folder { return &m.folder }

func (m *sqlMutation) Documents() []domain.Document {
	out := make([]domain.Document, len(m.docs))
	copy(out, m.docs)
	return out
}

func (m *sqlMutation) UpsertDocument(doc domain.Document) error {
	_, err := m.tx.ExecContext(m.ctx, `
INSERT INTO documents (
	id, folder_id, category, doc_type, status, name, url, content_type, size_bytes,
	uploaded_at, uploaded_by, expiration_date, expiry_notified_at,
	review_notes, review_date, reviewed_by,
	created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	name = EXCLUDED.name,
	url = EXCLUDED.url,
	content_type = EXCLUDED.content_type,
	size_bytes = EXCLUDED.size_bytes,
	uploaded_at = EXCLUDED.uploaded_at,
	uploaded_by = EXCLUDED.uploaded_by,
	expiration_date = EXCLUDED.expiration_date,
	expiry_notified_at = EXCLUDED.expiry_notified_at,
	review_notes = EXCLUDED.review_notes,
	review_date = EXCLUDED.review_date,
	reviewed_by = EXCLUDED.reviewed_by,
	updated_at = EXCLUDED.updated_at
`,
		doc.ID, doc.FolderID, string(doc.Category), string(doc.Type), string(doc.Status),
		doc.Name, doc.URL, doc.ContentType, doc.Size,
		doc.UploadedAt, doc.UploadedByID, doc.ExpirationDate, doc.ExpiryNotifiedAt,
		doc.ReviewNotes, doc.ReviewDate, doc.ReviewedByID,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

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

func (m *sqlMutation) UpdateDocument(doc domain.Document) error {
	res, err := m.tx.ExecContext(m.ctx, `
UPDATE documents
SET status = $2, review_notes = $3, review_date = $4, reviewed_by = $5, updated_at = $6
WHERE id = $1
`, doc.ID, string(doc.Status), doc.ReviewNotes, doc.ReviewDate, doc.ReviewedByID, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update document", fmt.Errorf("document %s", doc.ID))
	}

	m.docsWritten = true
	for i := range m.docs {
		if m.docs[i].ID == doc.ID {
			m.docs[i] = doc
			break
		}
	}
	return nil
}

func (m *sqlMutation) SaveFolder(folder domain.Folder) error {
	m.folder = folder
	m.folderSaved = true
	return nil
}

func (m *sqlMutation) commitFolder() error {
	emailsJSON, err := json.Marshal(m.folder.AdditionalNotificationEmails)
	if err != nil {
		return fmt.Errorf("marshal notification emails: %w", err)
	}

	res, err := m.tx.ExecContext(m.ctx, `
UPDATE folders
SET status = $2, version = version + 1,
	submitted_at = $3, submitted_by = $4, notification_emails = $5,
	reviewed_at = $6, reviewer_id = $7, review_comments = $8,
	updated_at = $9
WHERE id = $1 AND version = $10
`,
		m.folder.ID, string(m.folder.Status),
		m.folder.SubmittedAt, m.folder.SubmittedByID, emailsJSON,
		m.folder.ReviewedAt, m.folder.ReviewerID, m.folder.ReviewComments,
		m.folder.UpdatedAt, m.baseVersion,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update folder rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrConflict, "update folder",
			fmt.Errorf("folder %s version %d is stale", m.folder.ID, m.baseVersion))
	}
	return nil
}
