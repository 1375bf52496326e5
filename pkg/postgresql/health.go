package postgresql

import (
	"context"
	"fmt"
)

// HealthChecker returns a probe for the HTTP health endpoint. It pings the
// database and reports pool saturation so a wedged pool is visible before
// queries start timing out.
func HealthChecker(db PostgreSQLClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("ping %s:%d/%s: %w", db.Host(), db.Port(), db.DatabaseName(), err)
		}

		stats := db.Stats()
		if stats.MaxConns() > 0 && stats.AcquiredConns() == stats.MaxConns() {
			return fmt.Errorf("connection pool exhausted: %d/%d in use",
				stats.AcquiredConns(), stats.MaxConns())
		}

		return nil
	}
}
