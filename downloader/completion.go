package downloader

import (
	"time"

	"github.com/josueBarretogit/manga-tui/archive"
	"github.com/josueBarretogit/manga-tui/source"
)

// Completion is emitted once per Completed task.
type Completion struct {
	Provider  source.Kind    `json:"provider"`
	MangaID   string         `json:"manga_id"`
	ChapterID string         `json:"chapter_id"`
	Number    float64        `json:"number"`
	Format    archive.Format `json:"format"`
	Path      string         `json:"path"`
	At        time.Time      `json:"at"`
}

// Recorder receives completion records, e.g. the download history or the sync queue.
type Recorder interface {
	Record(completion Completion) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(completion Completion) error

func (f RecorderFunc) Record(completion Completion) error {
	return f(completion)
}
