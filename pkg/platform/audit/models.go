// Package audit carries security events out of the token components. Emission
// never blocks or fails the caller: events go into a bounded buffer and a
// background worker ships them to one or more sinks.
package audit

import (
	"context"
	"time"

	"authgate/pkg/requestcontext"
)

type AuditEvent string

const (
	EventUserCreated          AuditEvent = "user_created"
	EventLoginSucceeded       AuditEvent = "login_succeeded"
	EventLoginFailed          AuditEvent = "login_failed"
	EventRefreshExpired       AuditEvent = "refresh_expired"
	EventRefreshReuseDetected AuditEvent = "refresh_reuse_detected"
	EventLoggedOut            AuditEvent = "logged_out"
	EventLogoutRevokeFailed   AuditEvent = "logout_revoke_failed"
	EventCSRFInvalid          AuditEvent = "csrf_invalid"
	EventAssertionReplayed    AuditEvent = "assertion_replayed"
	EventAccountLinked        AuditEvent = "account_linked"
)

// Severity levels for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// severities maps each event to its default SIEM routing level.
var severities = map[AuditEvent]Severity{
	EventLoginFailed:          SeverityWarning,
	EventLogoutRevokeFailed:   SeverityWarning,
	EventCSRFInvalid:          SeverityWarning,
	EventRefreshReuseDetected: SeverityCritical,
	EventAssertionReplayed:    SeverityCritical,
}

// Severity returns the default severity of the event; unknown events are info.
func (e AuditEvent) Severity() Severity {
	if s, ok := severities[e]; ok {
		return s
	}
	return SeverityInfo
}

// SecurityEvent captures security-relevant actions for SIEM and alerting.
type SecurityEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject,omitempty"` // user id, or email for pre-auth failures
	Action    string    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Device    string    `json:"device,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Severity  Severity  `json:"severity"`
}

// NewSecurityEvent builds an event for action and enriches it with the
// request metadata carried by ctx.
func NewSecurityEvent(ctx context.Context, action AuditEvent, subject, reason string) SecurityEvent {
	return SecurityEvent{
		Timestamp: requestcontext.Now(ctx),
		Subject:   subject,
		Action:    string(action),
		Reason:    reason,
		IP:        requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Device:    requestcontext.Device(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Severity:  action.Severity(),
	}
}

// SecurityAuditor is what domain components depend on.
type SecurityAuditor interface {
	Emit(ctx context.Context, event SecurityEvent)
}

// Sink receives batches of events from the worker.
type Sink interface {
	Write(ctx context.Context, events []SecurityEvent) error
}

// NopAuditor discards events.
type NopAuditor struct{}

func (NopAuditor) Emit(context.Context, SecurityEvent) {}
