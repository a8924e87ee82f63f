package history

import (
	"fmt"
	"time"

	"github.com/josueBarretogit/manga-tui/archive"
	"github.com/josueBarretogit/manga-tui/downloader"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/util"
)

// SavedChapter is a downloaded chapter preserved in the history.
type SavedChapter struct {
	Provider  source.Kind    `json:"provider"`
	MangaID   string         `json:"manga_id"`
	ChapterID string         `json:"chapter_id"`
	Number    float64        `json:"number"`
	Format    archive.Format `json:"format"`
	Path      string         `json:"path"`
	At        time.Time      `json:"at"`
}

func newSavedChapter(completion downloader.Completion) *SavedChapter {
	return &SavedChapter{
		Provider:  completion.Provider,
		MangaID:   completion.MangaID,
		ChapterID: completion.ChapterID,
		Number:    completion.Number,
		Format:    completion.Format,
		Path:      completion.Path,
		At:        completion.At,
	}
}

func encode(provider source.Kind, chapterID string) string {
	return fmt.Sprintf("%s/%s", provider, chapterID)
}

func (s *SavedChapter) encode() string {
	return encode(s.Provider, s.ChapterID)
}

func (s *SavedChapter) String() string {
	return fmt.Sprintf("Chapter %s of %s (%s)", util.FormatNumber(s.Number), s.MangaID, s.Provider)
}
