// Package mq publishes domain events to a broker. Delivery is best-effort.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event channels.
const (
	ChannelVerificationRequested    = "auth.verification_requested"
	ChannelAppointmentCreated       = "appointment.created"
	ChannelAppointmentStatusChanged = "appointment.status_changed"
	ChannelAppointmentDeleted       = "appointment.deleted"
)

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// MQ wraps a backend with a stable API.
type MQ struct {
	backend Backend
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Publish sends a message to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}

// Publisher is the subset of MQ the services depend on.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// PublishJSON encodes payload and publishes it with a JSON content type attribute.
func PublishJSON(ctx context.Context, p Publisher, channel string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s event: %w", channel, err)
	}
	return p.Publish(ctx, channel, data, map[string]string{"content-type": "application/json"})
}
