package postgresql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelper owns a test container for the duration of one test suite and
// cleans it up through t.Cleanup. Integration tests are skipped in short
// mode.
type TestHelper struct {
	Container *TestContainer
	T         *testing.T
}

// NewTestHelper creates a test helper with the default configuration.
func NewTestHelper(t *testing.T) *TestHelper {
	return NewTestHelperWithConfig(t, nil)
}

// NewTestHelperWithConfig creates a test helper with custom configuration.
func NewTestHelperWithConfig(t *testing.T, config *TestContainerConfig) *TestHelper {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	container, err := NewTestContainer(context.Background(), config)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Close(); err != nil {
			t.Logf("Failed to close test container: %v", err)
		}
	})

	return &TestHelper{Container: container, T: t}
}

// NewTestHelperWithMigrations creates a test helper and runs migrations from the given directory.
func NewTestHelperWithMigrations(t *testing.T, migrationsPath string) *TestHelper {
	config := DefaultTestContainerConfig()
	config.MigrationsPath = migrationsPath
	return NewTestHelperWithConfig(t, config)
}

// CleanupTables truncates all tables between tests.
func (h *TestHelper) CleanupTables() {
	require.NoError(h.T, h.Container.TruncateAllTables())
}

// ExecuteSQL executes SQL and fails the test on error.
func (h *TestHelper) ExecuteSQL(sql string) {
	require.NoError(h.T, h.Container.ExecuteSQL(sql))
}

// GetClient returns the PostgreSQL client.
func (h *TestHelper) GetClient() PostgreSQLClient {
	return h.Container.Client
}
