package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchtower/internal/model"
)

func seedHistory(t *testing.T, dir string) string {
	t.Helper()
	db := filepath.Join(dir, "w.db")
	tickets := writeFile(t, dir, "tickets.json", twoNewTickets)
	users := writeFile(t, dir, "users.json", `[{"id":"d1","name":"Dana","role":"driver"}]`)

	_, err := executeCommand(t, "replace", "tickets", tickets, "--db", db)
	require.NoError(t, err)
	_, err = executeCommand(t, "replace", "users", users, "--db", db)
	require.NoError(t, err)
	_, err = executeCommand(t, "replace", "tickets", tickets, "--db", db)
	require.NoError(t, err)
	return db
}

func TestHistory_Text(t *testing.T) {
	db := seedHistory(t, t.TempDir())

	out, err := executeCommand(t, "history", "--db", db)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, out)
	assert.Contains(t, lines[0], "tickets")
	assert.Contains(t, lines[1], "users")
	assert.Contains(t, lines[2], "tickets")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "1 "), lines[0])
}

func TestHistory_FiltersJSON(t *testing.T) {
	db := seedHistory(t, t.TempDir())

	out, err := executeCommand(t, "--format", "json", "history", "--db", db, "--collection", "tickets")
	require.NoError(t, err)

	var rows []HistoryRow
	resp := decodeResponse(t, out, &rows)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Seq)
	assert.Equal(t, int64(3), rows[1].Seq)
	assert.Equal(t, model.CollectionTickets, rows[0].Collection)
	assert.Equal(t, rows[0].Fingerprint, rows[1].Fingerprint, "same value, same fingerprint")
	assert.Positive(t, rows[0].Bytes)

	out, err = executeCommand(t, "--format", "json", "history", "--db", db, "--after", "1", "--limit", "1")
	require.NoError(t, err)
	rows = nil
	decodeResponse(t, out, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, model.CollectionUsers, rows[0].Collection)
}

func TestHistory_Empty(t *testing.T) {
	out, err := executeCommand(t, "history", "--db", filepath.Join(t.TempDir(), "w.db"))
	require.NoError(t, err)
	assert.Equal(t, "No history.\n", out)
}

func TestHistory_UnknownCollection(t *testing.T) {
	_, err := executeCommand(t, "history", "--db", filepath.Join(t.TempDir(), "w.db"), "--collection", "parcels")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestShortFingerprint(t *testing.T) {
	assert.Equal(t, "abc", shortFingerprint("abc"))
	assert.Equal(t, "0123456789ab", shortFingerprint("0123456789abcdef"))
}
