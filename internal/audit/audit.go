// Package audit records moderation actions: role changes, account deletions
// and staff removing other users' content.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

type Action string

const (
	RoleChanged        Action = "role_changed"
	UserDeleted        Action = "user_deleted"
	PostRemoved        Action = "post_removed"
	CommentRemoved     Action = "comment_removed"
	SubcategoryRemoved Action = "subcategory_removed"
)

type Event struct {
	Action     Action    `json:"action"`
	ActorID    int       `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	TargetType string    `json:"target_type"`
	TargetID   int       `json:"target_id"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher delivers events. Publishing is best effort: callers log failures
// and carry on, the moderation action itself has already committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the structured log.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.InfoContext(ctx, "audit",
		"action", e.Action,
		"actor_id", e.ActorID,
		"actor_role", e.ActorRole,
		"target_type", e.TargetType,
		"target_id", e.TargetID,
		"detail", e.Detail,
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher produces one JSON message per event, keyed by the target so
// all events about one resource land on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = p.now().UTC()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.TargetType + ":" + strconv.Itoa(e.TargetID)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing audit event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Record publishes e and logs, rather than returns, any failure.
func Record(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "audit publish failed", "action", e.Action, "target_id", e.TargetID, "error", err)
	}
}
