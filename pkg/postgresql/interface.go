package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// RowsInterface is the result-set surface repositories consume. It exists
// so query results can be mocked.
type RowsInterface interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

type rowsWrapper struct {
	rows pgx.Rows
}

// NewRowsWrapper adapts pgx.Rows to RowsInterface.
func NewRowsWrapper(rows pgx.Rows) RowsInterface {
	return &rowsWrapper{rows: rows}
}

func (r *rowsWrapper) Next() bool { return r.rows.Next() }

func (r *rowsWrapper) Scan(dest ...any) error { return r.rows.Scan(dest...) }

func (r *rowsWrapper) Close() { r.rows.Close() }

func (r *rowsWrapper) Err() error { return r.rows.Err() }

// PostgreSQLClient defines the interface for PostgreSQL operations.
type PostgreSQLClient interface {
	// Query operations. All three honor a transaction embedded in ctx.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (RowsInterface, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	// Transactions
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)

	// Connection management
	Ping(ctx context.Context) error
	Close()
	Stats() *pgxpool.Stat

	// Introspection
	DatabaseName() string
	Host() string
	Port() int
}
