package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
	"github.com/obralink/compliance-engine/internal/infrastructure/repository/postgres"
)

func newSubmitUC(store *postgres.MemoryStore, publisher *publisherFake, observer *observerFake) *SubmitFolderUseCase {
	return NewSubmitFolderUseCase(store, testCatalog(), publisher, discardLogger(), observer)
}

func TestSubmitIncompleteFolder(t *testing.T) {
	store := postgres.NewMemoryStore()
	seedLaborFolder(store, domain.FolderDraft,
		contentDoc("doc-payroll", domain.TypePayroll, domain.DocumentDraft),
	)
	publisher := &publisherFake{}
	uc := newSubmitUC(store, publisher, &observerFake{})

	_, err := uc.SubmitFolder(context.Background(), "folder-1", ports.Actor{ID: "contractor@x.io"}, nil)
	if !domain.IsKind(err, domain.ErrIncompleteChecklist) {
		t.Fatalf("expected ErrIncompleteChecklist, got %v", err)
	}

	var incomplete *domain.IncompleteChecklistError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteChecklistError, got %T", err)
	}
	want := []domain.DocumentType{domain.TypeSocialSecurityPayment}
	if !reflect.DeepEqual(incomplete.Missing, want) {
		t.Fatalf("Missing = %v, want %v", incomplete.Missing, want)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("failed submit must not publish, got %d events", len(publisher.events))
	}
}

func TestSubmitSuccess(t *testing.T) {
	store := postgres.NewMemoryStore()
	seedLaborFolder(store, domain.FolderDraft,
		contentDoc("doc-payroll", domain.TypePayroll, domain.DocumentDraft),
		contentDoc("doc-ssp", domain.TypeSocialSecurityPayment, domain.DocumentDraft),
	)
	publisher := &publisherFake{}
	observer := &observerFake{}
	uc := newSubmitUC(store, publisher, observer)

	emails := []string{"boss@x.io", " boss@x.io ", "hr@x.io"}
	folder, err := uc.SubmitFolder(context.Background(), "folder-1", ports.Actor{ID: "contractor@x.io"}, emails)
	if err != nil {
		t.Fatalf("SubmitFolder() error = %v", err)
	}
	if folder.Status != domain.FolderSubmitted {
		t.Fatalf("expected submitted folder, got %s", folder.Status)
	}
	if folder.SubmittedAt == nil || folder.SubmittedByID != "contractor@x.io" {
		t.Fatalf("submission metadata missing: %+v", folder)
	}
	if !reflect.DeepEqual(folder.AdditionalNotificationEmails, []string{"boss@x.io", "hr@x.io"}) {
		t.Fatalf("emails not deduped: %v", folder.AdditionalNotificationEmails)
	}

	docs, err := store.ListDocuments(context.Background(), "folder-1")
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	for _, doc := range docs {
		if doc.Status != domain.DocumentSubmitted {
			t.Fatalf("document %s not submitted: %s", doc.ID, doc.Status)
		}
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.Kind != domain.EventFolderSubmitted {
		t.Fatalf("expected folder.submitted event, got %s", event.Kind)
	}
	want := []string{"contractor@x.io", "boss@x.io", "hr@x.io"}
	if !reflect.DeepEqual(event.Recipients, want) {
		t.Fatalf("event recipients = %v, want %v", event.Recipients, want)
	}

	if !reflect.DeepEqual(observer.transitions, []domain.FolderStatus{domain.FolderSubmitted}) {
		t.Fatalf("observer transitions = %v", observer.transitions)
	}
}

func TestSubmitWrongState(t *testing.T) {
	store := postgres.NewMemoryStore()
	uc := newSubmitUC(store, &publisherFake{}, &observerFake{})

	seedLaborFolder(store, domain.FolderSubmitted)
	_, err := uc.SubmitFolder(context.Background(), "folder-1", ports.Actor{ID: "contractor@x.io"}, nil)
	if !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on resubmit, got %v", err)
	}

	seedLaborFolder(store, domain.FolderApproved)
	_, err = uc.SubmitFolder(context.Background(), "folder-1", ports.Actor{ID: "contractor@x.io"}, nil)
	if !domain.IsKind(err, domain.ErrFolderLocked) {
		t.Fatalf("expected ErrFolderLocked on approved folder, got %v", err)
	}
}

func TestSubmitPublishFailureDoesNotFailTransition(t *testing.T) {
	store := postgres.NewMemoryStore()
	seedLaborFolder(store, domain.FolderDraft,
		contentDoc("doc-payroll", domain.TypePayroll, domain.DocumentDraft),
		contentDoc("doc-ssp", domain.TypeSocialSecurityPayment, domain.DocumentDraft),
	)
	publisher := &publisherFake{err: errors.New("nats down")}
	uc := newSubmitUC(store, publisher, &observerFake{})

	folder, err := uc.SubmitFolder(context.Background(), "folder-1", ports.Actor{ID: "contractor@x.io"}, nil)
	if err != nil {
		t.Fatalf("SubmitFolder() error = %v", err)
	}
	if folder.Status != domain.FolderSubmitted {
		t.Fatalf("transition must survive publish failure, got %s", folder.Status)
	}
}

func TestResubmissionWithoutReuploadIsRefused(t *testing.T) {
	store := postgres.NewMemoryStore()
	rejected := contentDoc("doc-payroll", domain.TypePayroll, domain.DocumentRejected)
	rejected.ReviewNotes = "wrong month"
	seedLaborFolder(store, domain.FolderRejected,
		rejected,
		contentDoc("doc-ssp", domain.TypeSocialSecurityPayment, domain.DocumentApproved),
	)
	publisher := &publisherFake{}
	uc := newSubmitUC(store, publisher, &observerFake{})

	_, err := uc.SubmitFolder(context.Background(), "folder-1", ports.Actor{ID: "contractor@x.io"}, nil)
	if !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition without a fresh upload, got %v", err)
	}
	if !strings.Contains(err.Error(), string(domain.TypePayroll)) {
		t.Fatalf("error must name the rejected slot, got %q", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("refused submit must not publish, got %d events", len(publisher.events))
	}

	folder, getErr := store.GetFolder(context.Background(), "folder-1")
	if getErr != nil {
		t.Fatalf("GetFolder() error = %v", getErr)
	}
	if folder.Status != domain.FolderRejected || folder.SubmittedAt != nil {
		t.Fatalf("refused submit must leave the folder untouched: %+v", folder)
	}
}

func TestResubmissionAfterRejection(t *testing.T) {
	store := postgres.NewMemoryStore()
	rejected := contentDoc("doc-payroll", domain.TypePayroll, domain.DocumentRejected)
	rejected.ReviewNotes = "wrong month"
	seedLaborFolder(store, domain.FolderRejected,
		rejected,
		contentDoc("doc-ssp", domain.TypeSocialSecurityPayment, domain.DocumentApproved),
	)
	uploadUC := NewUploadDocumentUseCase(store, testCatalog())
	publisher := &publisherFake{}
	submitUC := newSubmitUC(store, publisher, &observerFake{})

	if _, err := uploadUC.UploadDocument(context.Background(), "folder-1", domain.TypePayroll,
		domain.Content{URL: "s3://bucket/payroll-v2"}, ports.Actor{ID: "contractor@x.io"}); err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}

	folder, err := submitUC.SubmitFolder(context.Background(), "folder-1", ports.Actor{ID: "contractor@x.io"}, nil)
	if err != nil {
		t.Fatalf("SubmitFolder() after rejection error = %v", err)
	}
	if folder.Status != domain.FolderSubmitted {
		t.Fatalf("expected submitted folder, got %s", folder.Status)
	}

	docs, _ := store.ListDocuments(context.Background(), "folder-1")
	for _, doc := range docs {
		switch doc.Type {
		case domain.TypePayroll:
			if doc.Status != domain.DocumentSubmitted {
				t.Fatalf("re-uploaded payroll must be submitted, got %s", doc.Status)
			}
		case domain.TypeSocialSecurityPayment:
			if doc.Status != domain.DocumentApproved {
				t.Fatalf("approved document must keep its review, got %s", doc.Status)
			}
		}
	}
}
