package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put("Plaid:acct-1", "access-sandbox-123"))
	got, err := s.Get("plaid:acct-1")
	require.NoError(t, err)
	require.Equal(t, "access-sandbox-123", got)

	raw, err := os.ReadFile(filepath.Join(dir, fileName))
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "access-sandbox-123"), "value is encrypted at rest")

	info, err := os.Stat(filepath.Join(dir, fileName))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.Delete("plaid:acct-1"))
	_, err = s.Get("plaid:acct-1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete("plaid:acct-1"))
}

func TestReopenReadsExistingSecrets(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put("a", "1"))

	again, err := Open(dir)
	require.NoError(t, err)
	got, err := again.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", got)

	require.NoError(t, again.Clear())
	_, err = again.Get("a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNameRequired(t *testing.T) {
	t.Parallel()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.Error(t, s.Put("  ", "x"))
	_, err = s.Get("")
	require.Error(t, err)
}
