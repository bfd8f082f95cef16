package services

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/mailer"
	"github.com/UniFest-2025/event-service/internal/validator"
)

func TestServiceManagerConfig_Validate(t *testing.T) {
	valid := ServiceManagerConfig{
		DefaultTimeout: 30 * time.Second,
		MaxRetries:     3,
		Event:          ServiceConfig{Enabled: true, CacheTTL: 5 * time.Minute},
	}

	tests := []struct {
		name    string
		mutate  func(*ServiceManagerConfig)
		wantErr bool
	}{
		{"valid config", func(c *ServiceManagerConfig) {}, false},
		{"zero timeout", func(c *ServiceManagerConfig) { c.DefaultTimeout = 0 }, true},
		{"negative retries", func(c *ServiceManagerConfig) { c.MaxRetries = -1 }, true},
		{"negative cache TTL", func(c *ServiceManagerConfig) { c.Ticket.CacheTTL = -time.Minute }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			err := config.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestServiceManager_GetterPanicsBeforeInitialize(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	v := validator.New()
	publisher := events.NewMockEventPublisher(logger)

	sm := NewDefaultServiceManager(nil, nil, logger, v, publisher, mailer.NopMailer{})

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic from getter before Initialize")
		}
	}()

	sm.Event()
}

func TestServiceManager_StateFlags(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	v := validator.New()
	publisher := events.NewMockEventPublisher(logger)

	sm := NewDefaultServiceManager(nil, nil, logger, v, publisher, mailer.NopMailer{})

	if sm.IsInitialized() {
		t.Error("expected manager to start uninitialized")
	}
	if sm.IsShutdown() {
		t.Error("expected manager to start not shut down")
	}
}
