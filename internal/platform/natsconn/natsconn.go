// Package natsconn dials NATS with the reconnect policy shared by the
// platform services and hands back a JetStream context.
package natsconn

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Options configures the connection. Zero values fall back to env vars or
// built-in defaults.
type Options struct {
	URL           string
	Name          string        // client name shown in server monitoring
	MaxReconnects int           // default from NATS_MAX_RECONNECTS or 5
	ReconnectWait time.Duration // default from NATS_RECONNECT_WAIT or 2s
	Log           *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.URL == "" {
		o.URL = strings.TrimSpace(os.Getenv("NATS_URL"))
		if o.URL == "" {
			o.URL = nats.DefaultURL
		}
	}
	if o.MaxReconnects == 0 {
		o.MaxReconnects = envInt("NATS_MAX_RECONNECTS", 5)
	}
	if o.ReconnectWait == 0 {
		o.ReconnectWait = envDuration("NATS_RECONNECT_WAIT", 2*time.Second)
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

func (o Options) natsOptions() []nats.Option {
	log := o.Log.With(zap.String("nats_url", o.URL))
	opts := []nats.Option{
		nats.MaxReconnects(o.MaxReconnects),
		nats.ReconnectWait(o.ReconnectWait),
		nats.RetryOnFailedConnect(false),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("server", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			log.Info("nats connection closed")
		}),
	}
	if o.Name != "" {
		opts = append(opts, nats.Name(o.Name))
	}
	return opts
}

// Connect fails fast: the error is returned once the initial dial fails.
func Connect(opts Options) (*nats.Conn, error) {
	opts = opts.withDefaults()
	nc, err := nats.Connect(opts.URL, opts.natsOptions()...)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s (max_reconnects=%d, wait=%s): %w",
			opts.URL, opts.MaxReconnects, opts.ReconnectWait, err)
	}
	return nc, nil
}

// ConnectJetStream dials and opens a JetStream context. The connection is
// closed again if JetStream is unavailable.
func ConnectJetStream(opts Options) (*nats.Conn, nats.JetStreamContext, error) {
	nc, err := Connect(opts)
	if err != nil {
		return nil, nil, err
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return nc, js, nil
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
