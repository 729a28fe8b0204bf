// Package kafka forwards audit events to a Kafka topic as JSON messages keyed by resource ID.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/audit"
)

const writeTimeout = 5 * time.Second

// Writer is the part of kafka.Writer the sink uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Sink implements audit.Sink over a Kafka writer.
type Sink struct {
	writer Writer
	log    *zap.Logger
}

// NewSink returns a Sink writing to topic on brokers. The writer is
// asynchronous: Write queues the message and returns, and delivery
// failures are reported to log once the batch completes.
func NewSink(brokers []string, topic string, log *zap.Logger) (*Sink, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, errors.New("kafka audit sink: brokers and topic are required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sink{log: log}
	s.writer = &skafka.Writer{
		Addr:                   skafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &skafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             s.completed,
	}
	return s, nil
}

// NewSinkWithWriter wraps an existing writer.
func NewSinkWithWriter(w Writer) *Sink {
	return &Sink{writer: w, log: zap.NewNop()}
}

// completed runs after the async writer finishes a batch.
func (s *Sink) completed(msgs []skafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		s.log.Warn("audit kafka delivery failed",
			zap.ByteString("key", m.Key),
			zap.String("topic", m.Topic),
			zap.Error(err))
	}
}

type message struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	IP         string    `json:"ip"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Write publishes e. Events for the same resource share a key and therefore a partition.
func (s *Sink) Write(ctx context.Context, e audit.Event) error {
	b, err := json.Marshal(message{
		ID:         e.ID,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		IP:         e.IP,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	})
	if err != nil {
		return err
	}
	key := e.ResourceID
	if key == "" {
		key = e.Resource
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.writer.WriteMessages(ctx, skafka.Message{Key: []byte(key), Value: b, Time: e.CreatedAt})
}

// Close flushes and closes the writer.
func (s *Sink) Close() error {
	if s == nil || s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
