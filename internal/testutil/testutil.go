// Package testutil provides hermetic fixtures shared by package tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"healthcare-booking-server/internal/config"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/utils"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func JWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:  "test-access-secret-0123456789abcdef",
		RefreshSecret: "test-refresh-secret-0123456789abcde",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "healthcare-booking-server-test",
	}
}

func NewTokenManager() *utils.TokenManager {
	return utils.NewTokenManager(JWTConfig())
}

// Event is one message captured by Publisher.
type Event struct {
	Channel    string
	Data       []byte
	Attributes map[string]string
}

// Publisher records published events in memory.
type Publisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *Publisher) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Event{Channel: channel, Data: data, Attributes: attrs})
	return uuid.NewString(), nil
}

// Events returns every event published on channel.
func (p *Publisher) Events(channel string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, e := range p.events {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}

// Decode unmarshals the last event on channel into v and reports whether one existed.
func (p *Publisher) Decode(t testing.TB, channel string, v any) bool {
	t.Helper()
	events := p.Events(channel)
	if len(events) == 0 {
		return false
	}
	if err := json.Unmarshal(events[len(events)-1].Data, v); err != nil {
		t.Fatalf("decode %s event: %v", channel, err)
	}
	return true
}
