// Package notify sends applicant-facing email for application lifecycle
// events. Delivery is best effort: callers treat a failed send as a logged
// warning, never as a request failure.
package notify

import (
	"context"
	"log/slog"
)

// Kind selects the message template.
type Kind string

const (
	KindApplicationReceived Kind = "application-received"
	KindApplicationApproved Kind = "application-approved"
	KindApplicationRejected Kind = "application-rejected"
)

// Data carries the template fields for one notification.
type Data struct {
	Name          string
	ApplicationID string
	Reason        string
}

// Notifier delivers one notification to one recipient.
type Notifier interface {
	Send(ctx context.Context, kind Kind, recipient string, data Data) error
}

// LogNotifier records the send in the log instead of delivering it. Used in
// dev and whenever email is disabled.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs a log-only notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, kind Kind, recipient string, data Data) error {
	n.logger.Info("email suppressed",
		"kind", string(kind),
		"recipient", recipient,
		"application_id", data.ApplicationID,
	)
	return nil
}
