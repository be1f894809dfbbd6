package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "notes.db?_pragma=busy_timeout%285000%29&_pragma=foreign_keys%281%29", dsn("notes.db"))
}

func TestOpenDB_PragmasOnEveryConnection(t *testing.T) {
	database, err := OpenDB(filepath.Join(t.TempDir(), "nested", "draftboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	ctx := context.Background()
	var conns []*sql.Conn
	for range 2 {
		c, err := database.Conn(ctx)
		require.NoError(t, err)
		defer c.Close()
		conns = append(conns, c)
	}

	for i, c := range conns {
		var fk, timeout int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 1, fk, "conn %d", i)
		assert.Equal(t, 5000, timeout, "conn %d", i)
	}

	var mode string
	require.NoError(t, database.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}
