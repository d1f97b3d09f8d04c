package natsconn

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func TestWithDefaults_FromEnv(t *testing.T) {
	t.Setenv("NATS_URL", "")
	t.Setenv("NATS_MAX_RECONNECTS", "7")
	t.Setenv("NATS_RECONNECT_WAIT", "3s")

	o := Options{}.withDefaults()
	if o.URL != nats.DefaultURL {
		t.Fatalf("expected default url, got %q", o.URL)
	}
	if o.MaxReconnects != 7 || o.ReconnectWait != 3*time.Second {
		t.Fatalf("unexpected retry policy %d/%s", o.MaxReconnects, o.ReconnectWait)
	}
	if o.Log == nil {
		t.Fatal("expected a nop logger")
	}
}

func TestWithDefaults_BadEnvFallsBack(t *testing.T) {
	t.Setenv("NATS_MAX_RECONNECTS", "-2")
	t.Setenv("NATS_RECONNECT_WAIT", "later")

	o := Options{URL: "nats://example:4222"}.withDefaults()
	if o.URL != "nats://example:4222" {
		t.Fatalf("explicit url must win, got %q", o.URL)
	}
	if o.MaxReconnects != 5 || o.ReconnectWait != 2*time.Second {
		t.Fatalf("unexpected fallback policy %d/%s", o.MaxReconnects, o.ReconnectWait)
	}
}

func TestNatsOptions_Name(t *testing.T) {
	o := Options{Name: "social"}.withDefaults()
	var applied nats.Options
	for _, opt := range o.natsOptions() {
		if err := opt(&applied); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	if applied.Name != "social" || applied.MaxReconnect != 5 || applied.ClosedCB == nil {
		t.Fatalf("unexpected options %+v", applied)
	}
}

func TestConnectJetStream_Unreachable(t *testing.T) {
	_, _, err := ConnectJetStream(Options{
		URL:           "nats://127.0.0.1:19999",
		ReconnectWait: 10 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error connecting to unreachable NATS")
	}
}
