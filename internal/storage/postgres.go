package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"adtime-printshop/internal/config"
	"adtime-printshop/internal/pricing"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStorage reads the catalog reference tables and persists order lines.
type PostgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

var _ pricing.ReferenceStore = (*PostgresStorage)(nil)

func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = cfg.RetryMaxElapsed
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("db", cfg.Name))

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			if err = conn.PingContext(ctx); err != nil {
				_ = conn.Close()
				return fmt.Errorf("ping: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return NewFromDB(db, logger), nil
}

// NewFromDB wraps an already opened connection.
func NewFromDB(db *sqlx.DB, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, logger: logger}
}

// DB exposes the raw handle for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStorage) GetProduct(ctx context.Context, id int64) (*pricing.Product, error) {
	const query = `SELECT id, name, category, base_price FROM products WHERE id = $1`

	var product pricing.Product
	if err := s.db.GetContext(ctx, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

func (s *PostgresStorage) ListMaterials(ctx context.Context) ([]pricing.Material, error) {
	const query = `SELECT id, name, unit_price FROM materials ORDER BY id`

	var materials []pricing.Material
	if err := s.db.SelectContext(ctx, &materials, query); err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

func (s *PostgresStorage) ListPrintOptions(ctx context.Context) ([]pricing.PrintOption, error) {
	const query = `SELECT name, price FROM print_options ORDER BY name`

	var options []pricing.PrintOption
	if err := s.db.SelectContext(ctx, &options, query); err != nil {
		return nil, fmt.Errorf("failed to list print options: %w", err)
	}
	return options, nil
}

func (s *PostgresStorage) ListWorks(ctx context.Context) ([]pricing.Work, error) {
	const query = `SELECT operation, price, unit FROM works ORDER BY operation`

	var works []pricing.Work
	if err := s.db.SelectContext(ctx, &works, query); err != nil {
		return nil, fmt.Errorf("failed to list works: %w", err)
	}
	return works, nil
}

// ListActiveRules returns active rules for the product and wildcard rules,
// highest priority first, ties by id.
func (s *PostgresStorage) ListActiveRules(ctx context.Context, productID int64) ([]pricing.CalculationRule, error) {
	const query = `
        SELECT id, rule_type, product_id, lamination, min_quantity, max_quantity,
               value, priority, is_active
        FROM calculation_rules
        WHERE is_active = TRUE
          AND (product_id = $1 OR product_id IS NULL)
        ORDER BY priority DESC, id ASC
    `

	var rules []pricing.CalculationRule
	if err := s.db.SelectContext(ctx, &rules, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list calculation rules: %w", err)
	}
	return rules, nil
}

// ListMatrixEntries returns the product's matrix rows in id order, which is
// the order the first-match scan uses.
func (s *PostgresStorage) ListMatrixEntries(ctx context.Context, productID int64) ([]pricing.MatrixEntry, error) {
	const query = `
        SELECT id, product_id, quantity_from, quantity_to, price,
               print_type, lamination, material_id
        FROM pricing_matrix
        WHERE product_id = $1
        ORDER BY id
    `

	var entries []pricing.MatrixEntry
	if err := s.db.SelectContext(ctx, &entries, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list pricing matrix: %w", err)
	}
	return entries, nil
}
