// Package logmail is the in-repo Notifier: it logs rendered notifications
// instead of delivering them. Transport is owned by the external mail
// gateway; swapping it in means implementing ports.Notifier against its API.
package logmail

import (
	"context"
	"log/slog"
	"strings"

	"github.com/obralink/compliance-engine/internal/core/domain"
)

type Notifier struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

func (n *Notifier) Send(_ context.Context, notification domain.Notification) error {
	n.logger.Info("notification",
		"event", string(notification.Event),
		"folder_id", notification.FolderID,
		"recipients", strings.Join(notification.Recipients, ","),
		"subject", notification.Subject,
	)
	return nil
}
