// Package audit records administrative mutations as best-effort events.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actions recorded by the admin backend.
const (
	ActionLoginSuccess          = "login_success"
	ActionLoginFailure          = "login_failure"
	ActionLogout                = "logout"
	ActionReload                = "reload"
	ActionUserRoleChanged       = "user_role_changed"
	ActionUserDeleted           = "user_deleted"
	ActionWorkspaceDeleted      = "workspace_deleted"
	ActionMembershipAdded       = "membership_added"
	ActionMembershipRemoved     = "membership_removed"
	ActionMembershipRoleChanged = "membership_role_changed"
	ActionCascadeFailed         = "cascade_failed"
)

// Event is one audit record.
type Event struct {
	ID         string
	Action     string
	Resource   string
	ResourceID string
	IP         string
	Metadata   string
	CreatedAt  time.Time
}

// Sink persists or forwards audit events.
type Sink interface {
	Write(ctx context.Context, e Event) error
}

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event. LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, action, resource, resourceID, metadata string)
}

// Logger implements AuditLogger on top of a Sink.
type Logger struct {
	sink        Sink
	ipExtractor IPExtractor
	log         *zap.Logger
	nowF        func() time.Time
}

// NewLogger returns an AuditLogger writing to sink. ipExtractor and log may be nil;
// then IP is recorded as "unknown" and sink failures are dropped silently.
func NewLogger(sink Sink, ipExtractor IPExtractor, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{sink: sink, ipExtractor: ipExtractor, log: log, nowF: time.Now}
}

// LogEvent writes one audit event.
func (l *Logger) LogEvent(ctx context.Context, action, resource, resourceID, metadata string) {
	if l == nil || l.sink == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		if v := l.ipExtractor(ctx); v != "" {
			ip = v
		}
	}
	e := Event{
		ID:         uuid.New().String(),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         ip,
		Metadata:   metadata,
		CreatedAt:  l.nowF().UTC(),
	}
	if err := l.sink.Write(ctx, e); err != nil {
		l.log.Warn("audit: failed to write event",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err))
	}
}

// Nop is an AuditLogger that discards every event.
type Nop struct{}

func (Nop) LogEvent(context.Context, string, string, string, string) {}
