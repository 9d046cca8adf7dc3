package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
)

func TestNewConnection_RequiresURL(t *testing.T) {
	_, err := NewConnection(context.Background(), database.Config{Driver: database.DriverPostgres})
	assert.ErrorIs(t, err, errMissingURL)
}

func TestNewConnection_BadURL(t *testing.T) {
	_, err := NewConnection(context.Background(), database.Config{URL: "postgres://%zz"})
	assert.Error(t, err)
}

// FOLIO_TEST_POSTGRES_URL points at a scratch database.
func TestConnection_RebindsPlaceholders(t *testing.T) {
	url := os.Getenv("FOLIO_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("FOLIO_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, database.Config{URL: url})
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, database.DriverPostgres, conn.Driver())

	var sum int
	require.NoError(t, conn.QueryRow(ctx, `SELECT ?::int + ?::int`, 2, 3).Scan(&sum))
	assert.Equal(t, 5, sum)

	uow := database.NewUnitOfWork(conn)
	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	var literal string
	require.NoError(t, database.ExecutorFromContext(txCtx, conn).QueryRow(txCtx, `SELECT 'a?b'`).Scan(&literal))
	assert.Equal(t, "a?b", literal)
	require.NoError(t, uow.Rollback(txCtx))
}
