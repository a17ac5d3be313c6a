package reporting

import (
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/MediaFetch/internal/config"
)

func TestInit_DisabledWithoutDSN(t *testing.T) {
	cfg := &config.Config{}
	enabled, err := Init(cfg, "test")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if enabled {
		t.Error("Expected reporting to stay disabled without a DSN")
	}

	// Capturing without a client must not panic.
	CaptureError(errors.New("ignored"), map[string]string{"route": "/mp3"})
	CaptureError(nil, nil)
}

func TestInit_InvalidDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sentry.DSN = "not a dsn"
	if _, err := Init(cfg, "test"); err == nil {
		t.Fatal("Expected error for an invalid DSN")
	}
}

func TestCaptureError_Tags(t *testing.T) {
	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events = append(events, event)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	hub := sentry.CurrentHub()
	previous := hub.Client()
	hub.BindClient(client)
	defer hub.BindClient(previous)

	CaptureError(errors.New("conversion failed"), map[string]string{"format": "mp3"})

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if got := events[0].Tags["format"]; got != "mp3" {
		t.Errorf("Expected format tag mp3, got %q", got)
	}
}
