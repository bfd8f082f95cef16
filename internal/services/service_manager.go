package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/mailer"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Logging configuration
	EnableDebugLogging bool
	LogLevel           slog.Level

	// Service-specific configurations
	Event        ServiceConfig
	Registration ServiceConfig
	Ticket       ServiceConfig
	Merch        ServiceConfig
	Discussion   ServiceConfig

	// Global settings
	DefaultTimeout time.Duration
	MaxRetries     int
}

type ServiceConfig struct {
	Enabled      bool
	CacheEnabled bool
	CacheTTL     time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db             *gorm.DB
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	mailer         mailer.Mailer
	config         ServiceManagerConfig

	// Service instances
	eventService        EventService
	registrationService RegistrationService
	ticketService       TicketService
	merchService        MerchService
	discussionService   DiscussionService
	feedbackService     FeedbackService
	accountService      AccountService
	adminService        AdminService
	analyticsService    AnalyticsService
	exportService       ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, m mailer.Mailer, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:             db,
		repo:           repo,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
		mailer:         m,
		config:         config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, m mailer.Mailer) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,

		Event: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     5 * time.Minute,
		},
		Registration: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     2 * time.Minute,
		},
		Ticket: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     0,
		},
		Merch: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     0,
		},
		Discussion: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     0,
		},

		DefaultTimeout: 30 * time.Second,
		MaxRetries:     3,
	}

	return NewServiceManager(db, repo, logger, validator, publisher, m, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices(ctx context.Context) error {
	if sm.config.Event.Enabled {
		sm.eventService = NewEventService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
		sm.logger.Info("Event service initialized")
	}

	if sm.config.Registration.Enabled {
		sm.registrationService = NewRegistrationService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher, sm.mailer)
		sm.logger.Info("Registration service initialized")
	}

	if sm.config.Ticket.Enabled {
		sm.ticketService = NewTicketService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
		sm.logger.Info("Ticket service initialized")
	}

	if sm.config.Merch.Enabled {
		sm.merchService = NewMerchService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher, sm.mailer)
		sm.logger.Info("Merch service initialized")
	}

	if sm.config.Discussion.Enabled {
		sm.discussionService = NewDiscussionService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
		sm.logger.Info("Discussion service initialized")
	}

	sm.feedbackService = NewFeedbackService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Feedback service initialized")

	sm.accountService = NewAccountService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Account service initialized")

	sm.adminService = NewAdminService(sm.repo, sm.db, sm.logger, sm.validator, sm.mailer)
	sm.logger.Info("Admin service initialized")

	sm.analyticsService = NewAnalyticsService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Analytics service initialized")

	sm.exportService = NewExportService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Export service initialized")

	return nil
}

// Service getters

func (sm *serviceManager) Event() EventService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Event.Enabled && sm.eventService != nil {
		return sm.eventService
	}

	panic("event service not enabled or not initialized")
}

func (sm *serviceManager) Registration() RegistrationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Registration.Enabled && sm.registrationService != nil {
		return sm.registrationService
	}

	panic("registration service not enabled or not initialized")
}

func (sm *serviceManager) Ticket() TicketService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Ticket.Enabled && sm.ticketService != nil {
		return sm.ticketService
	}

	panic("ticket service not enabled or not initialized")
}

func (sm *serviceManager) Merch() MerchService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Merch.Enabled && sm.merchService != nil {
		return sm.merchService
	}

	panic("merch service not enabled or not initialized")
}

func (sm *serviceManager) Discussion() DiscussionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Discussion.Enabled && sm.discussionService != nil {
		return sm.discussionService
	}

	panic("discussion service not enabled or not initialized")
}

func (sm *serviceManager) Feedback() FeedbackService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.feedbackService != nil {
		return sm.feedbackService
	}

	panic("feedback service not initialized")
}

func (sm *serviceManager) Account() AccountService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.accountService != nil {
		return sm.accountService
	}

	panic("account service not initialized")
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.adminService != nil {
		return sm.adminService
	}

	panic("admin service not initialized")
}

func (sm *serviceManager) Analytics() AnalyticsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.analyticsService != nil {
		return sm.analyticsService
	}

	panic("analytics service not initialized")
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.exportService != nil {
		return sm.exportService
	}

	panic("export service not initialized")
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.eventPublisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// ===== UTILITY METHODS =====

// GetConfig returns the service manager configuration
func (sm *serviceManager) GetConfig() ServiceManagerConfig {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.config
}

// IsInitialized returns whether the service manager has been initialized
func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.initialized
}

// IsShutdown returns whether the service manager has been shut down
func (sm *serviceManager) IsShutdown() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.shutdown
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}

// ===== CONFIGURATION VALIDATION =====

// Validate validates the service manager configuration
func (config *ServiceManagerConfig) Validate() error {
	var errors []string

	if config.DefaultTimeout <= 0 {
		errors = append(errors, "default timeout must be positive")
	}

	if config.MaxRetries < 0 {
		errors = append(errors, "max retries cannot be negative")
	}

	for name, sc := range map[string]ServiceConfig{
		"event":        config.Event,
		"registration": config.Registration,
		"ticket":       config.Ticket,
		"merch":        config.Merch,
		"discussion":   config.Discussion,
	} {
		if sc.CacheTTL < 0 {
			errors = append(errors, fmt.Sprintf("%s: cache TTL cannot be negative", name))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}
