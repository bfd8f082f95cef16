package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/UniFest-2025/event-service/internal/cache"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/repositories/casdoor"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	event         repositories.EventRepository
	registration  repositories.RegistrationRepository
	ticket        repositories.TicketRepository
	discussion    repositories.DiscussionRepository
	feedback      repositories.FeedbackRepository
	user          repositories.UserRepository
	passwordReset repositories.PasswordResetRepository
	analytics     repositories.AnalyticsRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB            *gorm.DB
	RedisClient   *redis.Client
	CasdoorConfig casdoor.CasdoorConfig
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cache.NewCacheManager(config.RedisClient),
	}

	repo.event = NewEventPostgreSQL(config.DB, config.RedisClient)
	repo.registration = NewRegistrationPostgreSQL(config.DB, config.RedisClient)
	repo.ticket = NewTicketPostgreSQL(config.DB, config.RedisClient)
	repo.discussion = NewDiscussionPostgreSQL(config.DB)
	repo.feedback = NewFeedbackPostgreSQL(config.DB)
	repo.passwordReset = NewPasswordResetPostgreSQL(config.DB)
	repo.analytics = NewAnalyticsPostgreSQL(config.DB, config.RedisClient)

	// Identity lives in Casdoor
	repo.user = casdoor.NewUserCasdoor(config.CasdoorConfig, config.RedisClient)

	return repo
}

func (r *PostgreSQLRepository) Event() repositories.EventRepository {
	return r.event
}

func (r *PostgreSQLRepository) Registration() repositories.RegistrationRepository {
	return r.registration
}

func (r *PostgreSQLRepository) Ticket() repositories.TicketRepository {
	return r.ticket
}

func (r *PostgreSQLRepository) Discussion() repositories.DiscussionRepository {
	return r.discussion
}

func (r *PostgreSQLRepository) Feedback() repositories.FeedbackRepository {
	return r.feedback
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

func (r *PostgreSQLRepository) PasswordReset() repositories.PasswordResetRepository {
	return r.passwordReset
}

func (r *PostgreSQLRepository) Analytics() repositories.AnalyticsRepository {
	return r.analytics
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		txRepo.event = NewEventPostgreSQL(tx, r.redisClient)
		txRepo.registration = NewRegistrationPostgreSQL(tx, r.redisClient)
		txRepo.ticket = NewTicketPostgreSQL(tx, r.redisClient)
		txRepo.discussion = NewDiscussionPostgreSQL(tx)
		txRepo.feedback = NewFeedbackPostgreSQL(tx)
		txRepo.passwordReset = NewPasswordResetPostgreSQL(tx)
		txRepo.analytics = NewAnalyticsPostgreSQL(tx, r.redisClient)

		// User repository is external and does not join the transaction
		txRepo.user = r.user

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- rm.repo.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("repository shutdown timed out: %w", ctx.Err())
	}
}
