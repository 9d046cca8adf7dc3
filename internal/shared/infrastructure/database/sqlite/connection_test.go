package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
)

func openMemory(t *testing.T) database.Connection {
	t.Helper()
	conn, err := NewConnection(context.Background(), database.Config{SQLitePath: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Exec(context.Background(), `CREATE TABLE pages (id TEXT PRIMARY KEY, slug TEXT NOT NULL)`)
	require.NoError(t, err)
	return conn
}

func TestNewConnection_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "folio.db")

	conn, err := NewConnection(ctx, database.Config{Driver: database.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.Ping(ctx))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
	assert.FileExists(t, path)
}

func TestNewConnection_ViaFactory(t *testing.T) {
	conn, err := database.NewConnection(context.Background(), database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: database.MemoryPath,
	})
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)

	result, err := conn.Exec(ctx, `INSERT INTO pages (id, slug) VALUES (?, ?)`, "1", "home")
	require.NoError(t, err)
	affected, err := result.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = conn.Exec(ctx, `INSERT INTO pages (id, slug) VALUES (?, ?)`, "2", "about")
	require.NoError(t, err)

	var slug string
	require.NoError(t, conn.QueryRow(ctx, `SELECT slug FROM pages WHERE id = ?`, "1").Scan(&slug))
	assert.Equal(t, "home", slug)

	rows, err := conn.Query(ctx, `SELECT slug FROM pages ORDER BY slug`)
	require.NoError(t, err)
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		slugs = append(slugs, s)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"about", "home"}, slugs)

	err = conn.QueryRow(ctx, `SELECT slug FROM pages WHERE id = ?`, "missing").Scan(&slug)
	assert.True(t, database.IsNoRows(err))
}

func TestUnitOfWork(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)
	uow := database.NewUnitOfWork(conn)

	insert := func(ctx context.Context, id string) error {
		_, err := database.ExecutorFromContext(ctx, conn).Exec(ctx,
			`INSERT INTO pages (id, slug) VALUES (?, ?)`, id, "page-"+id)
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n))
		return n
	}

	t.Run("commit", func(t *testing.T) {
		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, insert(txCtx, "1"))
		require.NoError(t, uow.Commit(txCtx))
		assert.Equal(t, 1, count())
	})

	t.Run("rollback", func(t *testing.T) {
		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, insert(txCtx, "2"))
		require.NoError(t, uow.Rollback(txCtx))
		assert.Equal(t, 1, count())
	})

	t.Run("nested begin reuses the outer transaction", func(t *testing.T) {
		outer, err := uow.Begin(ctx)
		require.NoError(t, err)
		inner, err := uow.Begin(outer)
		require.NoError(t, err)

		require.NoError(t, insert(inner, "3"))
		require.NoError(t, uow.Commit(inner))
		require.NoError(t, uow.Rollback(outer))
		assert.Equal(t, 1, count())
	})

	t.Run("no transaction", func(t *testing.T) {
		assert.Error(t, uow.Commit(ctx))
		assert.Error(t, uow.Rollback(ctx))
	})

	t.Run("duplicate key inside transaction", func(t *testing.T) {
		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, insert(txCtx, "4"))
		require.Error(t, insert(txCtx, "1"))
		require.NoError(t, uow.Rollback(txCtx))
		assert.Equal(t, 1, count())
	})
}
