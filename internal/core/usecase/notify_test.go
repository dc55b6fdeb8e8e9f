package usecase

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/obralink/compliance-engine/internal/core/domain"
)

func TestNotifySubmittedAddsReviewerPool(t *testing.T) {
	notifier := &notifierFake{}
	uc := NewNotifyUseCase(notifier, []string{"reviewer@x.io", "reviewer@x.io"}, discardLogger())

	err := uc.HandleEvent(context.Background(), domain.Event{
		Kind:          domain.EventFolderSubmitted,
		FolderID:      "folder-1",
		Category:      domain.FolderWorkerLabor,
		SubjectName:   "Maria Lopez",
		SubmittedByID: "contractor@x.io",
		Recipients:    []string{"contractor@x.io", "boss@x.io"},
	})
	if err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if len(notifier.sent) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(notifier.sent))
	}
	var recipients []string
	for _, n := range notifier.sent {
		recipients = append(recipients, n.Recipients...)
		if !strings.Contains(n.Subject, "Maria Lopez") {
			t.Fatalf("subject missing subject name: %s", n.Subject)
		}
	}
	want := []string{"contractor@x.io", "boss@x.io", "reviewer@x.io"}
	if !reflect.DeepEqual(recipients, want) {
		t.Fatalf("recipients = %v, want %v", recipients, want)
	}
}

func TestNotifyRejectedListsDocuments(t *testing.T) {
	notifier := &notifierFake{}
	uc := NewNotifyUseCase(notifier, nil, discardLogger())

	err := uc.HandleEvent(context.Background(), domain.Event{
		Kind:        domain.EventFolderRejected,
		FolderID:    "folder-1",
		Category:    domain.FolderWorkerLabor,
		SubjectName: "Maria Lopez",
		Recipients:  []string{"contractor@x.io"},
		RejectedDocuments: []domain.RejectedDocument{
			{DocumentID: "doc-payroll", Type: domain.TypePayroll, Notes: "wrong month"},
		},
	})
	if err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(notifier.sent))
	}
	body := notifier.sent[0].Body
	if !strings.Contains(body, "payroll") || !strings.Contains(body, "wrong month") {
		t.Fatalf("rejection body missing document details: %s", body)
	}
}

func TestNotifyExpiringIncludesDate(t *testing.T) {
	notifier := &notifierFake{}
	uc := NewNotifyUseCase(notifier, nil, discardLogger())

	expires := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	err := uc.HandleEvent(context.Background(), domain.Event{
		Kind:        domain.EventDocumentExpiring,
		FolderID:    "folder-1",
		Category:    domain.FolderWorker,
		SubjectName: "Maria Lopez",
		Recipients:  []string{"contractor@x.io"},
		DocumentID:  "doc-medical",
		ExpiresAt:   &expires,
	})
	if err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if !strings.Contains(notifier.sent[0].Body, "2026-09-15") {
		t.Fatalf("expiry body missing date: %s", notifier.sent[0].Body)
	}
}

func TestNotifyDeliveryFailureDoesNotFailHandler(t *testing.T) {
	notifier := &notifierFake{failFor: map[string]bool{"bounce@x.io": true}}
	uc := NewNotifyUseCase(notifier, nil, discardLogger())

	err := uc.HandleEvent(context.Background(), domain.Event{
		Kind:        domain.EventFolderApproved,
		FolderID:    "folder-1",
		Category:    domain.FolderWorkerLabor,
		SubjectName: "Maria Lopez",
		Recipients:  []string{"contractor@x.io", "bounce@x.io"},
	})
	if err != nil {
		t.Fatalf("delivery failure must not fail the handler, got %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Recipients[0] != "contractor@x.io" {
		t.Fatalf("expected one successful delivery, got %+v", notifier.sent)
	}
}

func TestNotifyNoRecipients(t *testing.T) {
	notifier := &notifierFake{}
	uc := NewNotifyUseCase(notifier, nil, discardLogger())

	err := uc.HandleEvent(context.Background(), domain.Event{
		Kind:     domain.EventFolderApproved,
		FolderID: "folder-1",
	})
	if err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("nothing to deliver, got %d", len(notifier.sent))
	}
}

func TestNotifyUnknownKind(t *testing.T) {
	uc := NewNotifyUseCase(&notifierFake{}, nil, discardLogger())
	err := uc.HandleEvent(context.Background(), domain.Event{Kind: "folder.teleported"})
	if err == nil {
		t.Fatalf("expected error for unknown event kind")
	}
}
