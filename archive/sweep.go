package archive

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/log"
)

// StaleAfter is the age after which an unpublished temporary artifact is considered abandoned.
const StaleAfter = 24 * time.Hour

var temporary = regexp.MustCompile(`^\.(cbz|epub)-.+\.tmp$|^\.raw-`)

// Sweep removes temporary artifacts under root left behind by interrupted builds
// and older than olderThan. It returns the removed paths.
func Sweep(root string, olderThan time.Duration, now time.Time) []string {
	var removed []string

	_ = filesystem.API().Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if !temporary.MatchString(info.Name()) || now.Sub(info.ModTime()) < olderThan {
			return nil
		}

		if err := filesystem.API().RemoveAll(path); err != nil {
			log.Warnf("removing stale %s: %v", path, err)
			return nil
		}

		removed = append(removed, path)
		if info.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})

	return removed
}
