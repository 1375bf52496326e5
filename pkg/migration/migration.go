package migration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/muhammadchandra19/marketplace/pkg/postgresql"
)

// Migration is a single schema migration loaded from disk. The down SQL
// is optional.
type Migration struct {
	ID        string
	Name      string
	Timestamp time.Time
	UpSQL     string
	DownSQL   string
}

// Config for the migration runner.
type Config struct {
	Dir       string
	Schema    string // defaults to "public"
	TableName string // defaults to "schema_migrations"
}

// Runner applies and reverts SQL migrations against PostgreSQL. Each
// migration runs in its own transaction together with its bookkeeping row.
type Runner struct {
	client postgresql.PostgreSQLClient
	logger logger.Interface
	dir    string
	schema string
	table  string
}

// NewRunner creates a migration runner.
func NewRunner(client postgresql.PostgreSQLClient, cfg Config, log logger.Interface) *Runner {
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	if cfg.TableName == "" {
		cfg.TableName = "schema_migrations"
	}

	return &Runner{
		client: client,
		logger: log,
		dir:    cfg.Dir,
		schema: cfg.Schema,
		table:  cfg.TableName,
	}
}

// Up applies pending migrations in filename order. steps <= 0 applies
// everything.
func (r *Runner) Up(ctx context.Context, steps int) error {
	if err := r.ensureTable(ctx); err != nil {
		return err
	}

	migrations, err := r.load()
	if err != nil {
		return err
	}

	applied, err := r.appliedIDs(ctx)
	if err != nil {
		return err
	}

	var pending []Migration
	for _, m := range migrations {
		if !applied[m.ID] {
			pending = append(pending, m)
		}
	}
	if steps > 0 && len(pending) > steps {
		pending = pending[:steps]
	}

	for _, m := range pending {
		err := postgresql.WithTx(ctx, r.client, func(txCtx context.Context) error {
			if _, err := r.client.Exec(txCtx, m.UpSQL); err != nil {
				return err
			}

			record := fmt.Sprintf(
				"INSERT INTO %s.%s (id, name, applied_at) VALUES ($1, $2, NOW())",
				r.schema, r.table,
			)
			_, err := r.client.Exec(txCtx, record, m.ID, m.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.ID, err)
		}

		r.logger.InfoContext(ctx, "Applied migration", logger.Field{
			Key:   "migration",
			Value: m.ID,
		})
	}

	return nil
}

// Down reverts the most recent applied migrations. steps must be positive
// and every affected migration must carry down SQL.
func (r *Runner) Down(ctx context.Context, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0")
	}

	if err := r.ensureTable(ctx); err != nil {
		return err
	}

	migrations, err := r.load()
	if err != nil {
		return err
	}

	applied, err := r.appliedIDs(ctx)
	if err != nil {
		return err
	}

	var toRevert []Migration
	for i := len(migrations) - 1; i >= 0 && len(toRevert) < steps; i-- {
		if applied[migrations[i].ID] {
			toRevert = append(toRevert, migrations[i])
		}
	}

	for _, m := range toRevert {
		if m.DownSQL == "" {
			return fmt.Errorf("migration %s has no down SQL", m.ID)
		}

		err := postgresql.WithTx(ctx, r.client, func(txCtx context.Context) error {
			if _, err := r.client.Exec(txCtx, m.DownSQL); err != nil {
				return err
			}

			remove := fmt.Sprintf("DELETE FROM %s.%s WHERE id = $1", r.schema, r.table)
			_, err := r.client.Exec(txCtx, remove, m.ID)
			return err
		})
		if err != nil {
			return fmt.Errorf("revert migration %s: %w", m.ID, err)
		}

		r.logger.InfoContext(ctx, "Reverted migration", logger.Field{
			Key:   "migration",
			Value: m.ID,
		})
	}

	return nil
}

func (r *Runner) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.%s (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
	`, r.schema, r.table)

	_, err := r.client.Exec(ctx, ddl)
	return err
}

func (r *Runner) appliedIDs(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	query := fmt.Sprintf("SELECT id FROM %s.%s ORDER BY applied_at", r.schema, r.table)
	rows, err := r.client.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}

	return applied, rows.Err()
}

func (r *Runner) load() ([]Migration, error) {
	upFiles, err := filepath.Glob(filepath.Join(r.dir, "*.up.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(upFiles)

	var migrations []Migration
	for _, upFile := range upFiles {
		m, err := parseFiles(upFile)
		if err != nil {
			return nil, fmt.Errorf("parse migration %s: %w", upFile, err)
		}
		migrations = append(migrations, m)
	}

	return migrations, nil
}

func parseFiles(upPath string) (Migration, error) {
	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return Migration{}, err
	}

	id := strings.TrimSuffix(filepath.Base(upPath), ".up.sql")

	// Filenames look like 20250801000001_create_orders.up.sql.
	parts := strings.SplitN(id, "_", 2)
	name := id
	if len(parts) > 1 {
		name = parts[1]
	}

	timestamp, err := time.Parse("20060102150405", parts[0])
	if err != nil {
		timestamp = time.Unix(0, 0)
	}

	var downSQL string
	downPath := strings.Replace(upPath, ".up.sql", ".down.sql", 1)
	if content, err := os.ReadFile(downPath); err == nil {
		downSQL = strings.TrimSpace(string(content))
	}

	return Migration{
		ID:        id,
		Name:      name,
		Timestamp: timestamp,
		UpSQL:     strings.TrimSpace(string(upSQL)),
		DownSQL:   downSQL,
	}, nil
}
