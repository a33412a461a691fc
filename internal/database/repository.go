// Package database provides PostgreSQL persistence for the submitted form document.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/project-amenities/backend/internal/config"
	"github.com/project-amenities/backend/internal/models"
)

// Repository defines durable single-document persistence.
type Repository interface {
	// Load returns the persisted document, or nil if none was saved yet.
	Load(ctx context.Context) (*models.FormDocument, error)

	// Save overwrites the persisted document.
	Save(ctx context.Context, doc *models.FormDocument) error

	// Close closes the database connection.
	Close()
}

// DecodeError reports a stored document that no longer matches the
// FormDocument shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode stored form document: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	key    string
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(cfg *config.Config, logger *zap.Logger) (Repository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresRepository{
		pool:   pool,
		logger: logger,
		key:    models.StorageKey,
	}

	if err := repo.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to PostgreSQL database")
	return repo, nil
}

// migrate creates the necessary database tables if they don't exist.
func (r *PostgresRepository) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS form_documents (
			storage_key VARCHAR(128) PRIMARY KEY,
			document JSONB NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := r.pool.Exec(ctx, query)
	return err
}

// Load retrieves the persisted document.
func (r *PostgresRepository) Load(ctx context.Context) (*models.FormDocument, error) {
	query := `SELECT document FROM form_documents WHERE storage_key = $1`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, r.key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to load form document", zap.String("key", r.key), zap.Error(err))
		return nil, fmt.Errorf("failed to load form document: %w", err)
	}

	var doc models.FormDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &DecodeError{Err: err}
	}

	return &doc, nil
}

// Save upserts the document under the fixed storage key.
func (r *PostgresRepository) Save(ctx context.Context, doc *models.FormDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode form document: %w", err)
	}

	query := `
		INSERT INTO form_documents (storage_key, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (storage_key)
		DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, r.key, raw, time.Now().UTC()); err != nil {
		r.logger.Error("Failed to save form document", zap.String("key", r.key), zap.Error(err))
		return fmt.Errorf("failed to save form document: %w", err)
	}

	r.logger.Info("Saved form document", zap.String("key", r.key))
	return nil
}

// Close closes the database connection pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
	r.logger.Info("Closed database connection")
}
