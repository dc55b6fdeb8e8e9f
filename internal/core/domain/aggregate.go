package domain

// ChecklistEntry is one slot of a category checklist.
type ChecklistEntry struct {
	Type     DocumentType `json:"type"`
	Required bool         `json:"required"`
}

// DeriveStatus computes a folder's status from its checklist and current
// documents. It is the only source of truth for folder status; the persisted
// column is a cache of this result.
//
// The check ordering is the tie-break policy: a rejection only wins once no
// required document is still awaiting review, and approval requires every
// required document to be approved. Optional documents never influence the
// result.
func DeriveStatus(entries []ChecklistEntry, docs []Document) FolderStatus {
	byType := indexByType(docs)

	anySubmitted := false
	anyRejected := false
	allApproved := true

	for _, entry := range entries {
		if !entry.Required {
			continue
		}
		doc, ok := byType[entry.Type]
		if !ok || !doc.HasContent() || doc.Status == DocumentDraft {
			return FolderDraft
		}
		switch doc.Status {
		case DocumentSubmitted:
			anySubmitted = true
			allApproved = false
		case DocumentRejected:
			anyRejected = true
			allApproved = false
		}
	}

	switch {
	case allApproved:
		return FolderApproved
	case anyRejected && !anySubmitted:
		return FolderRejected
	default:
		return FolderSubmitted
	}
}

// MissingRequired lists required types with no uploaded content, in checklist
// order. Empty result means the folder passes the submission gate.
func MissingRequired(entries []ChecklistEntry, docs []Document) []DocumentType {
	byType := indexByType(docs)

	var missing []DocumentType
	for _, entry := range entries {
		if !entry.Required {
			continue
		}
		doc, ok := byType[entry.Type]
		if !ok || !doc.HasContent() {
			missing = append(missing, entry.Type)
		}
	}
	return missing
}

// RejectedRequired lists required types whose document is still rejected, in
// checklist order. A rejected folder cannot be resubmitted until every one of
// these slots carries fresh content.
func RejectedRequired(entries []ChecklistEntry, docs []Document) []DocumentType {
	byType := indexByType(docs)

	var rejected []DocumentType
	for _, entry := range entries {
		if !entry.Required {
			continue
		}
		if doc, ok := byType[entry.Type]; ok && doc.Status == DocumentRejected {
			rejected = append(rejected, entry.Type)
		}
	}
	return rejected
}

// RequiredProgress counts approved required documents against the checklist
// total. Feeds the parent-level completion percentage view.
func RequiredProgress(entries []ChecklistEntry, docs []Document) (approved, total int) {
	byType := indexByType(docs)

	for _, entry := range entries {
		if !entry.Required {
			continue
		}
		total++
		if doc, ok := byType[entry.Type]; ok && doc.Status == DocumentApproved {
			approved++
		}
	}
	return approved, total
}

func indexByType(docs []Document) map[DocumentType]Document {
	byType := make(map[DocumentType]Document, len(docs))
	for _, d := range docs {
		byType[d.Type] = d
	}
	return byType
}
