package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestOpenAppliesMigrations(t *testing.T) {
	s := openTemp(t)

	for _, table := range []string{"accounts", "transactions", "transaction_lines", "expenses", "expense_claims"} {
		var name string
		err := s.DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Re-opening must not re-run migrations.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	var count int
	require.NoError(t, s2.DB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	// Hold the first pooled connection so the second query is forced onto
	// a freshly opened one; both must have enforcement on.
	pinned, err := s.DB.Conn(ctx)
	require.NoError(t, err)
	defer pinned.Close()

	var enabled int
	require.NoError(t, pinned.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled, "pinned connection")

	fresh, err := s.DB.Conn(ctx)
	require.NoError(t, err)
	defer fresh.Close()

	require.NoError(t, fresh.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled, "fresh connection")
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := openTemp(t)

	boom := errors.New("boom")
	err := s.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO accounts (code, name, type) VALUES (9999, 'Test', 'expense')")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, s.DB.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count))
	assert.Zero(t, count)
}

func TestWithTxCommits(t *testing.T) {
	s := openTemp(t)

	err := s.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO accounts (code, name, type) VALUES (9999, 'Test', 'expense')")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, s.DB.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count))
	assert.Equal(t, 1, count)
}
