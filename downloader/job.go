package downloader

import (
	"path/filepath"
	"strings"

	"github.com/josueBarretogit/manga-tui/archive"
	"github.com/josueBarretogit/manga-tui/imaging"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/util"
)

// Job describes one chapter to download. It is not modified after Enqueue.
type Job struct {
	Chapter *source.Chapter
	Format  archive.Format
	Quality imaging.Quality
	// Dir is the directory the archive is published in.
	Dir string
}

// Dir is the destination of chapters of one manga: <root>/<provider>/<manga title> <manga id>.
func Dir(root, provider string, chapter *source.Chapter) string {
	manga := &source.Manga{ID: chapter.MangaID, Title: chapter.MangaTitle}
	return filepath.Join(root, util.SanitizeFilename(strings.ToLower(provider)), manga.Dirname())
}
