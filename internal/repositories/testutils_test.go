package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/finsight/internal/sqlite"
	"github.com/myrjola/finsight/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestDB creates a seeded in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)

	dbs, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	require.NoError(t, err)
	require.NoError(t, dbs.Seed(ctx))

	t.Cleanup(func() {
		require.NoError(t, dbs.ReadWrite.Close())
		require.NoError(t, dbs.ReadOnly.Close())
	})
	return dbs
}
