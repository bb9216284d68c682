package mq

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"strings"
	"testing"

	"healthcare-booking-server/internal/config"
)

type captureBackend struct {
	channel string
	data    []byte
	attrs   map[string]string
	closed  bool
}

func (c *captureBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	c.channel, c.data, c.attrs = channel, data, attrs
	return "id-1", nil
}

func (c *captureBackend) Close() error {
	c.closed = true
	return nil
}

func TestPublishJSON(t *testing.T) {
	backend := &captureBackend{}
	queue := New(backend)

	id, err := PublishJSON(context.Background(), queue, ChannelAppointmentCreated, map[string]string{"id": "a1"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if id != "id-1" || backend.channel != ChannelAppointmentCreated {
		t.Fatalf("unexpected publish: id=%q channel=%q", id, backend.channel)
	}
	if backend.attrs["content-type"] != "application/json" {
		t.Errorf("content-type = %q", backend.attrs["content-type"])
	}
	var got map[string]string
	if err := json.Unmarshal(backend.data, &got); err != nil || got["id"] != "a1" {
		t.Errorf("payload = %s (%v)", backend.data, err)
	}

	if err := queue.Close(); err != nil || !backend.closed {
		t.Errorf("close: %v closed=%v", err, backend.closed)
	}
}

func TestPublishJSONEncodeError(t *testing.T) {
	if _, err := PublishJSON(context.Background(), &captureBackend{}, "x", make(chan int)); err == nil {
		t.Fatal("expected encode error")
	}
}

func TestLogBackend(t *testing.T) {
	var buf bytes.Buffer
	b := NewLogBackend(log.New(&buf, "", 0))

	id, err := b.Publish(context.Background(), ChannelAppointmentDeleted, []byte(`{"id":"a1"}`), nil)
	if err != nil || id == "" {
		t.Fatalf("publish: id=%q err=%v", id, err)
	}
	if !strings.Contains(buf.String(), ChannelAppointmentDeleted) {
		t.Errorf("log line missing channel: %q", buf.String())
	}
}

func TestNewBackendWithoutURL(t *testing.T) {
	b, err := NewBackend(config.RabbitMQConfig{})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	if _, ok := b.(*LogBackend); !ok {
		t.Fatalf("backend = %T, want *LogBackend", b)
	}
}

func TestRabbitMQRequiresURL(t *testing.T) {
	if _, err := NewRabbitMQClient(config.RabbitMQConfig{URL: "  "}); err == nil {
		t.Fatal("expected error for empty url")
	}
}
