package source

import (
	"github.com/josueBarretogit/manga-tui/util"
)

// Manga is a search result: a provider-scoped identifier and what is needed to show it.
type Manga struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Cover is the URL of the cover image.
	Cover    string `json:"cover"`
	URL      string `json:"url"`
	Provider Kind   `json:"provider"`
}

func (m *Manga) String() string {
	return m.Title
}

// Dirname is the directory holding the downloaded chapters of this manga.
func (m *Manga) Dirname() string {
	return util.SanitizeFilename(m.Title + " " + m.ID)
}
