// Package events publishes fire-and-forget domain events to NATS JetStream.
package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event is the envelope sent on every subject.
type Event struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	UserID     string         `json:"user_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// StreamConfig names the stream that captures the published subjects.
type StreamConfig struct {
	Name     string
	Subjects []string
	MaxAge   time.Duration
}

// Publisher publishes events asynchronously.
// The zero value and a nil pointer are both safe no-op stubs.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
	now func() time.Time
}

// New creates a Publisher using an existing JetStream context.
// Pass js=nil to get a no-op stub.
func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{js: js, log: log, now: time.Now}
}

// EnsureStream creates the stream when missing and widens its subjects when
// they no longer cover cfg.Subjects.
func (p *Publisher) EnsureStream(cfg StreamConfig) error {
	if p == nil || p.js == nil {
		return nil
	}
	info, err := p.js.StreamInfo(cfg.Name)
	if err == nil {
		if sameSubjects(info.Config.Subjects, cfg.Subjects) {
			return nil
		}
		sc := info.Config
		sc.Subjects = cfg.Subjects
		_, err = p.js.UpdateStream(&sc)
		return err
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	_, err = p.js.AddStream(&nats.StreamConfig{
		Name:     cfg.Name,
		Subjects: cfg.Subjects,
		Storage:  nats.FileStorage,
		MaxAge:   maxAge,
	})
	return err
}

// Publish sends an event (fire-and-forget). Failures are logged as warnings
// and never surface to the caller.
func (p *Publisher) Publish(subject, eventName, userID string, props map[string]any) {
	if p == nil || p.js == nil {
		return
	}
	data, err := Encode(Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		UserID:     userID,
		OccurredAt: p.now().UTC(),
		Properties: props,
	})
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// Encode renders the wire form of an event.
func Encode(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

// Decode parses the wire form of an event.
func Decode(data []byte) (Event, error) {
	var ev Event
	err := json.Unmarshal(data, &ev)
	return ev, err
}

func sameSubjects(have, want []string) bool {
	if len(have) != len(want) {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[s] = struct{}{}
	}
	for _, s := range want {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}
