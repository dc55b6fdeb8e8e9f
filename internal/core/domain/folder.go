package domain

import (
	"strings"
	"time"
)

// FolderStatus is derived from the folder's documents by DeriveStatus. The
// persisted column is a cache; it is only ever written alongside the document
// mutation that changed it, inside the same transaction.
type FolderStatus string

const (
	FolderDraft     FolderStatus = "draft"
	FolderSubmitted FolderStatus = "submitted"
	FolderApproved  FolderStatus = "approved"
	FolderRejected  FolderStatus = "rejected"
)

// FolderCategory selects the checklist a folder must satisfy. One folder type
// tagged by category replaces the per-category entity variants of the source
// system; the catalog supplies the only category-specific data.
type FolderCategory string

const (
	FolderCompany         FolderCategory = "company"
	FolderSafetyAndHealth FolderCategory = "safety_and_health"
	FolderEnvironmental   FolderCategory = "environmental"
	FolderWorker          FolderCategory = "worker"
	FolderVehicle         FolderCategory = "vehicle"
	FolderWorkerLabor     FolderCategory = "worker_labor"
)

type ParentKind string

const (
	ParentStartup      ParentKind = "startup"
	ParentLaborControl ParentKind = "labor_control"
)

type Folder struct {
	ID          string         `json:"id"`
	Category    FolderCategory `json:"category"`
	ParentID    string         `json:"parent_id,omitempty"`
	SubjectName string         `json:"subject_name"`
	Status      FolderStatus   `json:"status"`

	// Optimistic concurrency: bumped on every committed mutation.
	Version int64 `json:"version"`

	SubmittedAt                  *time.Time `json:"submitted_at,omitempty"`
	SubmittedByID                string     `json:"submitted_by_id,omitempty"`
	AdditionalNotificationEmails []string   `json:"additional_notification_emails,omitempty"`

	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewerID     string     `json:"reviewer_id,omitempty"`
	ReviewComments string     `json:"review_comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Locked reports whether document content may no longer change: uploads are
// legal only while the folder is draft or rejected.
func (f Folder) Locked() bool {
	return f.Status == FolderSubmitted || f.Status == FolderApproved
}

// ParentFolder groups child folders for a startup package or a monthly
// labor-control period. It carries no status of its own; completion and
// pending-review are views computed from the children on demand.
type ParentFolder struct {
	ID          string     `json:"id"`
	Kind        ParentKind `json:"kind"`
	CompanyName string     `json:"company_name"`
	Period      string     `json:"period,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DedupeEmails normalizes an additional-notification list: trims, drops
// empties, keeps first occurrence order.
func DedupeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
