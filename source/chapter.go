package source

import (
	"strings"
	"time"

	"github.com/josueBarretogit/manga-tui/util"
)

// Chapter is one reading unit of a manga.
type Chapter struct {
	ID      string `json:"id"`
	MangaID string `json:"manga_id"`
	// MangaTitle is filled when the adapter knows it; used for archive metadata.
	MangaTitle string `json:"manga_title,omitempty"`
	// Number may be fractional for sub-chapters; 0 for oneshots and unnumbered chapters.
	Number      float64   `json:"number"`
	Volume      string    `json:"volume,omitempty"`
	Title       string    `json:"title,omitempty"`
	Language    string    `json:"language"`
	Scanlators  []string  `json:"scanlators,omitempty"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Provider    Kind      `json:"provider"`
}

func (c *Chapter) String() string {
	name := "Chapter " + util.FormatNumber(c.Number)
	if c.Title != "" {
		name += ": " + c.Title
	}
	return name
}

// Filename is the deterministic base name of the chapter artifact, so that
// downloading the same chapter again replaces the previous artifact.
func (c *Chapter) Filename() string {
	volume := c.Volume
	if volume == "" {
		volume = "none"
	}

	parts := []string{"Ch", util.FormatNumber(c.Number), "Vol", volume}
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if len(c.Scanlators) > 0 {
		parts = append(parts, strings.Join(c.Scanlators, " "))
	}
	parts = append(parts, c.ID)

	return util.SanitizeFilename(strings.Join(parts, " "))
}

// Precedence decides whether candidate replaces kept when both share a chapter number and language.
type Precedence func(kept, candidate *Chapter) bool

// FirstWins keeps the first listed chapter.
func FirstWins(_, _ *Chapter) bool {
	return false
}

// PreferGroups favours chapters whose first scanlation group is in groups,
// in the order groups are given. Ties keep the first listed chapter.
func PreferGroups(groups []string) Precedence {
	rank := func(c *Chapter) int {
		if len(c.Scanlators) == 0 {
			return len(groups)
		}
		for i, g := range groups {
			if strings.EqualFold(g, c.Scanlators[0]) {
				return i
			}
		}
		return len(groups)
	}

	return func(kept, candidate *Chapter) bool {
		return rank(candidate) < rank(kept)
	}
}

// Deduplicate keeps one chapter per (language, number), in the position of the first occurrence.
// Unnumbered chapters are never merged.
func Deduplicate(chapters []*Chapter, replace Precedence) []*Chapter {
	var (
		result = make([]*Chapter, 0, len(chapters))
		seen   = make(map[string]int, len(chapters))
	)

	for _, c := range chapters {
		if c.Number == 0 {
			result = append(result, c)
			continue
		}

		k := c.Language + "|" + util.FormatNumber(c.Number)
		if i, ok := seen[k]; ok {
			if replace(result[i], c) {
				result[i] = c
			}
			continue
		}

		seen[k] = len(result)
		result = append(result, c)
	}

	return result
}

// Reverse returns the chapters in the opposite order. Used by adapters whose site lists newest first.
func Reverse(chapters []*Chapter) []*Chapter {
	reversed := make([]*Chapter, len(chapters))
	for i, c := range chapters {
		reversed[len(chapters)-1-i] = c
	}
	return reversed
}
