package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/greengo-app/greengo-api/internal/database"
	"github.com/greengo-app/greengo-api/internal/models"
	"github.com/greengo-app/greengo-api/migrations"
)

// TestDB manages a PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations, returns TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("greengo"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         &database.DB{Pool: pool},
	}, nil
}

// runMigrations applies the embedded goose migrations through a stdlib adapter
func runMigrations(pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	return migrations.Up(sqlDB)
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"twofa_attempts",
		"device_tokens",
		"notifications",
		"payment_methods",
		"wallet_transactions",
		"wallets",
		"collections",
		"users",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// SeedUser inserts a test user keyed on the identity-provider subject
func SeedUser(ctx context.Context, pool *pgxpool.Pool, subjectID, email, name string) (*models.User, error) {
	query := `
		INSERT INTO users (subject_id, email, name)
		VALUES ($1, $2, $3)
		RETURNING id, subject_id, email, name, language, twofa_enabled, created_at, updated_at
	`

	var user models.User
	err := pool.QueryRow(ctx, query, subjectID, email, name).Scan(
		&user.ID,
		&user.SubjectID,
		&user.Email,
		&user.Name,
		&user.Language,
		&user.TwoFAEnabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

// SeedTwoFactorSecret stores an authenticator secret for a user, optionally
// flipping the enabled flag as a confirmed enrollment would
func SeedTwoFactorSecret(ctx context.Context, pool *pgxpool.Pool, userID int64, secret string, enabled bool) error {
	query := `
		UPDATE users SET twofa_secret = $2, twofa_enabled = $3, updated_at = now()
		WHERE id = $1
	`
	if _, err := pool.Exec(ctx, query, userID, secret, enabled); err != nil {
		return fmt.Errorf("failed to seed two-factor secret: %w", err)
	}
	return nil
}

// SeedWallet creates a wallet with the given balance
func SeedWallet(ctx context.Context, pool *pgxpool.Pool, userID int64, balance float64) error {
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = EXCLUDED.balance
	`
	if _, err := pool.Exec(ctx, query, userID, balance); err != nil {
		return fmt.Errorf("failed to seed wallet: %w", err)
	}
	return nil
}
