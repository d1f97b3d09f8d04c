package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/events"
	"github.com/example/movie-platform/services/social/internal/store"
)

// Upstream subjects mirrored into the local directory.
const (
	SubjectUserCreated   = "auth.user.created"
	SubjectUserDeleted   = "auth.user.deleted"
	SubjectMovieUpserted = "catalog.movie.upserted"
)

// ErrMalformedEvent marks a message that can never be applied.
var ErrMalformedEvent = errors.New("malformed directory event")

type DirectoryConsumerOptions struct {
	Durable   string        // default social_directory
	BatchSize int           // default 100
	MaxWait   time.Duration // default 2s
}

// DirectoryConsumer applies user and movie lifecycle events to the tables
// behind store.UserDirectory and store.MovieCatalog.
type DirectoryConsumer struct {
	dir  store.DirectoryWriter
	log  *zap.Logger
	opts DirectoryConsumerOptions
}

func NewDirectoryConsumer(dir store.DirectoryWriter, log *zap.Logger, opts DirectoryConsumerOptions) *DirectoryConsumer {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Durable == "" {
		opts.Durable = "social_directory"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 2 * time.Second
	}
	return &DirectoryConsumer{dir: dir, log: log.With(zap.String("component", "directory_consumer")), opts: opts}
}

// Handle applies one message. It returns ErrMalformedEvent for payloads that
// must not be redelivered.
func (c *DirectoryConsumer) Handle(ctx context.Context, subject string, data []byte) error {
	ev, err := events.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch subject {
	case SubjectUserCreated:
		id := strings.TrimSpace(ev.UserID)
		if id == "" {
			return fmt.Errorf("%w: missing user_id", ErrMalformedEvent)
		}
		return c.dir.UpsertUser(ctx, id)
	case SubjectUserDeleted:
		id := strings.TrimSpace(ev.UserID)
		if id == "" {
			return fmt.Errorf("%w: missing user_id", ErrMalformedEvent)
		}
		at := ev.OccurredAt
		if at.IsZero() {
			at = time.Now()
		}
		return c.dir.MarkUserDeleted(ctx, id, at)
	case SubjectMovieUpserted:
		id, _ := ev.Properties["movie_id"].(string)
		if id = strings.TrimSpace(id); id == "" {
			return fmt.Errorf("%w: missing movie_id", ErrMalformedEvent)
		}
		return c.dir.UpsertMovie(ctx, id)
	default:
		return fmt.Errorf("%w: unknown subject %s", ErrMalformedEvent, subject)
	}
}

// Run pulls batches until ctx is done. Each message is acked on success,
// terminated when malformed and nak'ed for redelivery otherwise.
func (c *DirectoryConsumer) Run(ctx context.Context, js nats.JetStreamContext, subjects ...string) error {
	if len(subjects) == 0 {
		subjects = []string{SubjectUserCreated, SubjectUserDeleted, SubjectMovieUpserted}
	}

	subs := make([]*nats.Subscription, 0, len(subjects))
	for _, subj := range subjects {
		durable := c.opts.Durable + "_" + strings.NewReplacer(".", "_", "*", "any", ">", "all").Replace(subj)
		sub, err := js.PullSubscribe(subj, durable)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subj, err)
		}
		subs = append(subs, sub)
	}
	c.log.Info("directory consumer started", zap.Strings("subjects", subjects))

	for {
		for _, sub := range subs {
			if ctx.Err() != nil {
				return nil
			}
			msgs, err := sub.Fetch(c.opts.BatchSize, nats.MaxWait(c.opts.MaxWait))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				c.log.Warn("fetch failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Second):
				}
				continue
			}
			for _, m := range msgs {
				c.ack(ctx, m)
			}
		}
	}
}

func (c *DirectoryConsumer) ack(ctx context.Context, m *nats.Msg) {
	err := c.Handle(ctx, m.Subject, m.Data)
	switch {
	case err == nil:
		if err := m.Ack(); err != nil {
			c.log.Warn("ack failed", zap.Error(err))
		}
	case errors.Is(err, ErrMalformedEvent):
		c.log.Warn("dropping malformed event", zap.String("subject", m.Subject), zap.Error(err))
		if err := m.Term(); err != nil {
			c.log.Warn("term failed", zap.Error(err))
		}
	default:
		c.log.Error("apply directory event", zap.String("subject", m.Subject), zap.Error(err))
		if err := m.Nak(); err != nil {
			c.log.Warn("nak failed", zap.Error(err))
		}
	}
}
