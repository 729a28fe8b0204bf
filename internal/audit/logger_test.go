package audit

import (
	"context"
	"errors"
	"testing"
)

// memSink records events in memory for tests.
type memSink struct {
	events []Event
	err    error
}

func (m *memSink) Write(ctx context.Context, e Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	sink := &memSink{}
	logger := NewLogger(sink, func(context.Context) string { return "192.168.1.1" }, nil)

	logger.LogEvent(context.Background(), ActionUserDeleted, "user", "u1", "memberships=3")

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	e := sink.events[0]
	if e.Action != ActionUserDeleted || e.Resource != "user" || e.ResourceID != "u1" {
		t.Errorf("event = %+v", e)
	}
	if e.IP != "192.168.1.1" {
		t.Errorf("ip = %q", e.IP)
	}
	if e.Metadata != "memberships=3" {
		t.Errorf("metadata = %q", e.Metadata)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("id and created_at should be set")
	}
}

func TestLogger_LogEvent_IPFromContext(t *testing.T) {
	sink := &memSink{}
	logger := NewLogger(sink, ClientIP, nil)

	logger.LogEvent(WithClientIP(context.Background(), "10.0.0.1"), ActionLogout, "session", "", "")
	logger.LogEvent(context.Background(), ActionLogout, "session", "", "")

	if sink.events[0].IP != "10.0.0.1" {
		t.Errorf("ip = %q, want 10.0.0.1", sink.events[0].IP)
	}
	if sink.events[1].IP != "unknown" {
		t.Errorf("ip = %q, want unknown", sink.events[1].IP)
	}
}

func TestLogger_LogEvent_SinkError(t *testing.T) {
	logger := NewLogger(&memSink{err: errors.New("collector down")}, nil, nil)
	// Best-effort: must not panic.
	logger.LogEvent(context.Background(), ActionReload, "mirror", "", "")
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	l.LogEvent(context.Background(), ActionReload, "mirror", "", "")
	NewLogger(nil, nil, nil).LogEvent(context.Background(), ActionReload, "mirror", "", "")
	Nop{}.LogEvent(context.Background(), ActionReload, "mirror", "", "")
}
