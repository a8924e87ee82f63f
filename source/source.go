// Package source defines the domain model shared by every provider and the contract a provider adapter implements.
package source

import "context"

// Source translates one remote site into the domain model.
//
// Every method returns values in the site's canonical order. Metadata calls are never
// retried here; transport failures surface as *fault.NetworkError and structural drift
// of a document as *fault.ParseError.
type Source interface {
	// Name is the human readable name of the remote site.
	Name() string

	// Kind identifies the adapter.
	Kind() Kind

	// Search returns one page of results. An empty page, or one marked Last,
	// ends the result sequence.
	Search(ctx context.Context, query Query) (*SearchPage, error)

	// MangaByID fetches a single manga summary.
	MangaByID(ctx context.Context, mangaID string) (*Manga, error)

	// ChaptersOf lists the chapters of a manga in reading order, one per number and language.
	ChaptersOf(ctx context.Context, mangaID string) ([]*Chapter, error)

	// PagesOf lists the pages of a chapter in document order, indexed from 1 without gaps.
	PagesOf(ctx context.Context, chapterID string) ([]*Page, error)
}

// Query is a paginated search request.
type Query struct {
	Term string
	// Page is 1-based.
	Page int
	// Limit is the requested page size; adapters with a fixed page size ignore it.
	Limit int
}

// SearchPage is one page of search results.
type SearchPage struct {
	Mangas []*Manga `json:"mangas"`
	Page   int      `json:"page"`
	// Total is the number of results reported by the site, 0 when unknown.
	Total int  `json:"total"`
	Last  bool `json:"last"`
}

// Done reports whether no further page should be requested after this one.
func (p *SearchPage) Done() bool {
	return p == nil || len(p.Mangas) == 0 || p.Last
}
