package postgresql

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContainer runs a throwaway PostgreSQL instance for integration tests.
type TestContainer struct {
	Container testcontainers.Container
	Client    PostgreSQLClient
	ConnStr   string
	ctx       context.Context
}

// TestContainerConfig holds configuration for the test container.
type TestContainerConfig struct {
	Image            string
	Database         string
	Username         string
	Password         string
	MigrationsPath   string
	MigrationPattern string // defaults to "*.up.sql"
	StartupTimeout   time.Duration
	SkipMigrations   bool
}

// DefaultTestContainerConfig returns a default configuration.
func DefaultTestContainerConfig() *TestContainerConfig {
	return &TestContainerConfig{
		Image:            "postgres:15-alpine",
		Database:         "test_db",
		Username:         "test_user",
		Password:         "test_pass",
		StartupTimeout:   5 * time.Minute,
		MigrationPattern: "*.up.sql",
	}
}

// NewTestContainer starts a PostgreSQL container, connects to it and
// applies migrations when configured.
func NewTestContainer(ctx context.Context, config *TestContainerConfig) (*TestContainer, error) {
	if config == nil {
		config = DefaultTestContainerConfig()
	}

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage(config.Image),
		postgres.WithDatabase(config.Database),
		postgres.WithUsername(config.Username),
		postgres.WithPassword(config.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(config.StartupTimeout),
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

	tc := &TestContainer{
		Container: container,
		Client:    &Client{pool: pool},
		ConnStr:   connStr,
		ctx:       ctx,
	}

	if config.MigrationsPath != "" && !config.SkipMigrations {
		if err := tc.applyMigrations(config.MigrationsPath, config.MigrationPattern); err != nil {
			tc.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return tc, nil
}

// Close closes the connection and terminates the container.
func (tc *TestContainer) Close() error {
	if tc.Client != nil {
		tc.Client.Close()
	}

	if tc.Container != nil {
		if err := tc.Container.Terminate(tc.ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}

	return nil
}

// applyMigrations executes migration files matching pattern in filename
// order. Statements are split on trailing semicolons, which is enough for
// plain DDL files without procedural bodies.
func (tc *TestContainer) applyMigrations(dir, pattern string) error {
	if pattern == "" {
		pattern = "*.up.sql"
	}

	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migration files found in %s with pattern %s", dir, pattern)
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		for _, stmt := range splitStatements(string(content)) {
			if _, err := tc.Client.Exec(tc.ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute statement in %s: %w\nStatement: %s",
					filepath.Base(file), err, stmt)
			}
		}
	}

	return nil
}

func splitStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}

		current.WriteString(trimmed)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			statements = append(statements, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

// TruncateAllTables empties every table in the public schema between tests.
func (tc *TestContainer) TruncateAllTables() error {
	query := `
		SELECT tablename
		FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename NOT LIKE 'pg_%'
		AND tablename NOT LIKE 'sql_%'
	`

	rows, err := tc.Client.Query(tc.ctx, query)
	if err != nil {
		return fmt.Errorf("failed to get table names: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(tables) == 0 {
		return nil
	}

	truncate := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	if _, err := tc.Client.Exec(tc.ctx, truncate); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}

	return nil
}

// ExecuteSQL executes arbitrary SQL, for test setup.
func (tc *TestContainer) ExecuteSQL(sql string) error {
	_, err := tc.Client.Exec(tc.ctx, sql)
	return err
}

// GetConnectionString returns the connection string for the test database.
func (tc *TestContainer) GetConnectionString() string {
	return tc.ConnStr
}
