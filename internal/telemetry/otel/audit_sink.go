package otel

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/audit"
)

const auditScope = "admin.audit"

// NewAuditSink returns an audit.Sink that emits events as OTel log records via provider.
// A nil provider yields a sink that drops events.
func NewAuditSink(provider *sdklog.LoggerProvider) audit.Sink {
	if provider == nil {
		return noopSink{}
	}
	return &logSink{logger: provider.Logger(auditScope)}
}

type noopSink struct{}

func (noopSink) Write(context.Context, audit.Event) error { return nil }

type logSink struct {
	logger otellog.Logger
}

func (s *logSink) Write(ctx context.Context, e audit.Event) error {
	var rec otellog.Record
	rec.SetTimestamp(e.CreatedAt)
	rec.SetSeverity(otellog.SeverityInfo)
	if e.Action == audit.ActionCascadeFailed || e.Action == audit.ActionLoginFailure {
		rec.SetSeverity(otellog.SeverityWarn)
	}
	rec.SetBody(otellog.StringValue(e.Action + " " + e.Resource))
	rec.AddAttributes(
		otellog.String("audit.id", e.ID),
		otellog.String("action", e.Action),
		otellog.String("resource", e.Resource),
		otellog.String("ip", e.IP),
	)
	if e.ResourceID != "" {
		rec.AddAttributes(otellog.String("resource_id", e.ResourceID))
	}
	if e.Metadata != "" {
		rec.AddAttributes(otellog.String("metadata", e.Metadata))
	}
	s.logger.Emit(ctx, rec)
	return nil
}
