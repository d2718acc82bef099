package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, now: func() time.Time { return fixed }}

	err := p.Publish(context.Background(), Event{
		Action:     RoleChanged,
		ActorID:    1,
		ActorRole:  "admin",
		TargetType: "user",
		TargetID:   7,
		Detail:     "user -> moderator",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "user:7", string(w.msgs[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, RoleChanged, got.Action)
	assert.Equal(t, fixed, got.At)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}, now: time.Now}
	err := p.Publish(context.Background(), Event{Action: UserDeleted, TargetType: "user", TargetID: 3})
	assert.ErrorContains(t, err, "broker down")
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background(), Event{Action: PostRemoved, ActorID: 2, TargetType: "post", TargetID: 9}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["msg"])
	assert.Equal(t, "post_removed", line["action"])
	assert.EqualValues(t, 9, line["target_id"])
}

func TestRecordSwallowsErrors(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}, now: time.Now}
	assert.NotPanics(t, func() {
		Record(context.Background(), p, Event{Action: UserDeleted})
		Record(context.Background(), nil, Event{Action: UserDeleted})
	})
}
