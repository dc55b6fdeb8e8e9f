package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/obralink/compliance-engine/internal/core/domain"
	"github.com/obralink/compliance-engine/internal/core/ports"
)

// NotifyUseCase turns committed transition events into notification payloads
// and dispatches them recipient by recipient. Delivery failures are collected
// into a report and logged; they never fail the event handler, so the queue
// does not redeliver on a bounced address.
type NotifyUseCase struct {
	notifier     ports.Notifier
	reviewerPool []string
	logger       *slog.Logger
}

func NewNotifyUseCase(notifier ports.Notifier, reviewerPool []string, logger *slog.Logger) *NotifyUseCase {
	return &NotifyUseCase{
		notifier:     notifier,
		reviewerPool: domain.DedupeEmails(reviewerPool),
		logger:       logger,
	}
}

func (uc *NotifyUseCase) HandleEvent(ctx context.Context, event domain.Event) error {
	notification, err := uc.render(event)
	if err != nil {
		return fmt.Errorf("render notification: %w", err)
	}
	if len(notification.Recipients) == 0 {
		uc.logger.Warn("notification_no_recipients", "kind", string(event.Kind), "folder_id", event.FolderID)
		return nil
	}

	report := domain.DeliveryReport{FolderID: event.FolderID, Event: event.Kind}
	for _, recipient := range notification.Recipients {
		single := notification
		single.Recipients = []string{recipient}
		if err := uc.notifier.Send(ctx, single); err != nil {
			report.Failed = append(report.Failed, recipient)
			uc.logger.Error("notification_delivery_failed",
				"kind", string(event.Kind),
				"folder_id", event.FolderID,
				"recipient", recipient,
				"error", err,
			)
			continue
		}
		report.Delivered = append(report.Delivered, recipient)
	}

	uc.logger.Info("notification_dispatched",
		"kind", string(event.Kind),
		"folder_id", event.FolderID,
		"delivered", len(report.Delivered),
		"failed", len(report.Failed),
	)
	return nil
}

func (uc *NotifyUseCase) render(event domain.Event) (domain.Notification, error) {
	recipients := event.Recipients
	var subject, body string

	switch event.Kind {
	case domain.EventFolderSubmitted:
		// Reviewers learn about new submissions; the pool comes from worker
		// configuration, not from the event.
		recipients = append(append([]string{}, recipients...), uc.reviewerPool...)
		subject = fmt.Sprintf("Folder submitted for review: %s", event.SubjectName)
		body = fmt.Sprintf("The %s folder for %s was submitted by %s and is awaiting review.",
			event.Category, event.SubjectName, event.SubmittedByID)

	case domain.EventFolderApproved:
		subject = fmt.Sprintf("Folder approved: %s", event.SubjectName)
		body = fmt.Sprintf("The %s folder for %s has been approved.", event.Category, event.SubjectName)

	case domain.EventFolderRejected:
		subject = fmt.Sprintf("Folder rejected: %s", event.SubjectName)
		body = rejectionBody(event)

	case domain.EventDocumentExpiring:
		subject = fmt.Sprintf("Document expiring soon: %s", event.SubjectName)
		body = fmt.Sprintf("Document %s in the %s folder for %s expires on %s.",
			event.DocumentID, event.Category, event.SubjectName, expiryDate(event))

	default:
		return domain.Notification{}, fmt.Errorf("unknown event kind %q", event.Kind)
	}

	return domain.Notification{
		Event:      event.Kind,
		FolderID:   event.FolderID,
		Subject:    subject,
		Body:       body,
		Recipients: domain.DedupeEmails(recipients),
	}, nil
}

func rejectionBody(event domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The %s folder for %s was rejected. Documents to correct:\n",
		event.Category, event.SubjectName)
	for _, doc := range event.RejectedDocuments {
		fmt.Fprintf(&b, "- %s: %s\n", doc.Type, doc.Notes)
	}
	return b.String()
}

func expiryDate(event domain.Event) string {
	if event.ExpiresAt == nil {
		return "unknown date"
	}
	return event.ExpiresAt.Format("2006-01-02")
}
