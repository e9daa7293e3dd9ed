// Package logging provides structured, subsystem-tagged logging for the
// Contentstack management SDK and its CLI.
//
// The package is a thin facade over log/slog. Every record carries a
// subsystem attribute so output can be filtered per component.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("OAuth", "Authorization URL generated for app %s", appID)
//	logging.Debug("Transport", "Retrying %s %s (attempt %d)", method, url, attempt)
//	logging.Error("Config", err, "Failed to load %s", path)
//
// Components that accept a *slog.Logger (for example the token endpoint
// client in pkg/oauth) can be handed Subsystem("Name").
//
// # Audit Logging
//
// Credential lifecycle events are logged through Audit:
//
//	logging.Audit(logging.AuditEvent{
//	    Action:  "token_refresh",
//	    Outcome: "success",
//	    Target:  appID,
//	})
//
// Audit events are logged at INFO level with an [AUDIT] prefix. Token values
// are never part of an audit event.
package logging
