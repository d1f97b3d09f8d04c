// Package social implements the relationship graph, comment threads,
// comment reactions and movie ratings on top of the store contracts.
//
// Every operation takes the caller id explicitly and returns either a
// payload or an *Error tagged with a Kind.
package social

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// EventPublisher receives a notification after a mutation commits.
// *events.Publisher satisfies it.
type EventPublisher interface {
	Publish(subject, eventName, userID string, props map[string]any)
}

type Options struct {
	Logger          *zap.Logger
	Events          EventPublisher
	Clock           func() time.Time
	DefaultPageSize int
	MaxPageSize     int
}

// base carries the shared collaborators of every component.
type base struct {
	log             *zap.Logger
	events          EventPublisher
	clock           func() time.Time
	defaultPageSize int
	maxPageSize     int
}

func newBase(opts Options, component string) base {
	b := base{
		log:             opts.Logger,
		events:          opts.Events,
		clock:           opts.Clock,
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	b.log = b.log.With(zap.String("component", component))
	if b.clock == nil {
		b.clock = time.Now
	}
	if b.defaultPageSize < 1 {
		b.defaultPageSize = DefaultPageSize
	}
	if b.maxPageSize < 1 {
		b.maxPageSize = MaxPageSize
	}
	if b.defaultPageSize > b.maxPageSize {
		b.defaultPageSize = b.maxPageSize
	}
	return b
}

func (b base) now() time.Time { return b.clock().UTC() }

func (b base) publish(subject, eventName, userID string, props map[string]any) {
	if b.events == nil {
		return
	}
	b.events.Publish(subject, eventName, userID, props)
}

// normID is applied to every user and movie id entering the core, so a
// write and its matching read or delete agree on the key.
func normID(id string) string { return strings.TrimSpace(id) }
