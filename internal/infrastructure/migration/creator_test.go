package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erp/reconciler/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add refund index", "add_refund_index"},
		{"Add-Refund-Index", "add_refund_index"},
		{"ADD_REFUND_INDEX", "add_refund_index"},
		{"add__refund__index", "add_refund_index"},
		{"Credit Notes 2", "credit_notes_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("first migration is 000001", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add refund index", "Index payments by return")
		require.NoError(t, err)
		assert.Equal(t, "000001", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_add_refund_index.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000001_add_refund_index.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add refund index")
		assert.Contains(t, string(up), "Index payments by return")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "(Rollback)")
	})

	t.Run("continues after the highest version", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000001_init.up.sql", "000001_init.down.sql",
			"000007_settings.up.sql", "000007_settings.down.sql",
		)

		mf, err := CreateMigration(dir, "next", "")
		require.NoError(t, err)
		assert.Equal(t, "000008", mf.Version)
	})

	t.Run("creates missing directory", func(t *testing.T) {
		nested := filepath.Join(t.TempDir(), "nested", "migrations")

		_, err := CreateMigration(nested, "test", "")
		require.NoError(t, err)

		info, err := os.Stat(nested)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects names without usable characters", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("returns sorted up migrations only", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000003_credit_notes.up.sql", "000003_credit_notes.down.sql",
			"000001_init.up.sql", "000001_init.down.sql",
			"000002_settings.up.sql", "000002_settings.down.sql",
			"README.md", ".gitkeep",
		)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init", "000002_settings", "000003_credit_notes"}, names)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		names, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		if base, ok := strings.CutSuffix(name, upSuffix); ok {
			ups[base] = true
		}
		if base, ok := strings.CutSuffix(name, downSuffix); ok {
			downs[base] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}
