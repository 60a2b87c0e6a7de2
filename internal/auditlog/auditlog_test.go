package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRead(t *testing.T) {
	dir := t.TempDir()

	first := Entry{
		Timestamp:     time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
		Actor:         "treasurer",
		Action:        "payment",
		Details:       "Subs payment - A. Member",
		TransactionID: 7,
	}
	require.NoError(t, Append(dir, []Entry{first}))

	second := Entry{
		Timestamp: time.Date(2026, 2, 3, 11, 0, 0, 0, time.UTC),
		Actor:     "treasurer",
		Action:    "claim-delete",
		Details:   "claim 3",
	}
	require.NoError(t, Append(dir, []Entry{second}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0])
	assert.Equal(t, second, entries[1])
	assert.Zero(t, entries[1].TransactionID)
}

func TestRead_MissingFile(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppend_WritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	e := Entry{Timestamp: time.Now().UTC(), Actor: "a", Action: "payment"}
	require.NoError(t, Append(dir, []Entry{e}))
	require.NoError(t, Append(dir, []Entry{e}))

	data, err := os.ReadFile(filepath.Join(dir, logFile))
	require.NoError(t, err)
	assert.Equal(t, 1, countOccurrences(string(data), "timestamp,actor"))
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
