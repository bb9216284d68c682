package mq

import (
	"context"
	"log"
	"strings"

	"healthcare-booking-server/internal/config"
)

// LogBackend writes events to the process log. It is used when no broker is configured.
type LogBackend struct {
	logger *log.Logger
}

func NewLogBackend(logger *log.Logger) *LogBackend {
	if logger == nil {
		logger = log.Default()
	}
	return &LogBackend{logger: logger}
}

func (b *LogBackend) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	id := newMessageID()
	b.logger.Printf("event %s id=%s payload=%s", channel, id, data)
	return id, nil
}

func (b *LogBackend) Close() error { return nil }

// NewBackend picks RabbitMQ when a URL is configured and the log backend otherwise.
func NewBackend(cfg config.RabbitMQConfig) (Backend, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return NewLogBackend(nil), nil
	}
	client, err := NewRabbitMQClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}
