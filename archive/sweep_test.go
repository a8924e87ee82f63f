package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep(t *testing.T) {
	fs := filesystem.API()
	root := "/sweep"
	old := time.Now().Add(-2 * StaleAfter)

	write := func(path string, modified time.Time) {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, fs.WriteFile(path, []byte("x"), 0o644))
		require.NoError(t, fs.Chtimes(path, modified, modified))
	}

	write(filepath.Join(root, "m", ".cbz-123.tmp"), old)
	write(filepath.Join(root, "m", ".epub-9.tmp"), time.Now())
	write(filepath.Join(root, "m", "Ch_1.cbz"), old)
	write(filepath.Join(root, "m", ".raw-77", "0001.png"), old)
	require.NoError(t, fs.Chtimes(filepath.Join(root, "m", ".raw-77"), old, old))

	removed := Sweep(root, StaleAfter, time.Now())

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "m", ".cbz-123.tmp"),
		filepath.Join(root, "m", ".raw-77"),
	}, removed)

	for _, kept := range []string{".epub-9.tmp", "Ch_1.cbz"} {
		exists, err := filesystem.Exists(filepath.Join(root, "m", kept))
		require.NoError(t, err)
		assert.True(t, exists, kept)
	}

	assert.Empty(t, Sweep("/missing", StaleAfter, time.Now()))
}
