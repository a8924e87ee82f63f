package source

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/josueBarretogit/manga-tui/fault"
)

// Page references one image of a chapter.
type Page struct {
	ChapterID string `json:"chapter_id"`
	// Index is 1-based and contiguous within a chapter.
	Index int    `json:"index"`
	URL   string `json:"url"`
	// Size is the expected byte size when the source reports it, 0 otherwise.
	Size int64 `json:"size,omitempty"`
	// Headers are sent with the image request, e.g. the Referer some hosts demand.
	Headers map[string]string `json:"headers,omitempty"`
}

func (p *Page) String() string {
	return fmt.Sprintf("page %d of %s", p.Index, p.ChapterID)
}

// Extension guesses the image extension from the URL path, without the dot.
func (p *Page) Extension() string {
	u, err := url.Parse(p.URL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
}

// NewPages builds the page list of a chapter from image URLs in document order.
func NewPages(chapterID string, urls []string, headers map[string]string) []*Page {
	pages := make([]*Page, len(urls))
	for i, u := range urls {
		pages[i] = &Page{
			ChapterID: chapterID,
			Index:     i + 1,
			URL:       u,
			Headers:   headers,
		}
	}
	return pages
}

// CheckContiguous verifies that pages are indexed 1..N without gaps, in order.
func CheckContiguous(provider string, pages []*Page) error {
	if len(pages) == 0 {
		return fault.Missing(provider, "", "page", 1, 0)
	}

	for i, p := range pages {
		if p.Index != i+1 {
			return &fault.ParseError{
				Provider: provider,
				URL:      p.URL,
				Selector: "page index",
				Expected: i + 1,
				Found:    p.Index,
				Err:      fmt.Errorf("page sequence of chapter %s has a gap", p.ChapterID),
			}
		}
	}

	return nil
}
