package logging

import (
	"context"
	"log/slog"
)

// AuditEvent describes a security-relevant action on credentials.
// Token values must never be placed in any field.
type AuditEvent struct {
	// Action is what happened, e.g. "token_exchange", "token_refresh", "logout".
	Action string

	// Outcome is "success" or "failure".
	Outcome string

	// Target identifies the affected resource, usually an endpoint or app id.
	Target string

	// OrganizationUID is the organization the credentials belong to, if known.
	OrganizationUID string

	// Error is the failure reason for failed outcomes.
	Error string
}

// Audit logs an audit event at INFO level with an [AUDIT] prefix.
func Audit(event AuditEvent) {
	logger := Logger()
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		return
	}

	attrs := []slog.Attr{
		slog.String("subsystem", "Audit"),
		slog.String("action", event.Action),
		slog.String("outcome", event.Outcome),
	}
	if event.Target != "" {
		attrs = append(attrs, slog.String("target", event.Target))
	}
	if event.OrganizationUID != "" {
		attrs = append(attrs, slog.String("organization_uid", event.OrganizationUID))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}

	logger.LogAttrs(context.Background(), slog.LevelInfo, "[AUDIT] "+event.Action, attrs...)
}
