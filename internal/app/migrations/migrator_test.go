package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", VersionOf("001_init.sql"))
	assert.Equal(t, "002", VersionOf("/tmp/migrations/002_campaign_indexes.sql"))
	assert.Equal(t, "noversion.sql", VersionOf("noversion.sql"))
}

func TestPendingFiles_SortedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := PendingFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)
}

func TestPendingFiles_MissingDir(t *testing.T) {
	_, err := PendingFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
