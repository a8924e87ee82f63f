// Package provider exposes the built-in source adapters behind one validated façade.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/josueBarretogit/manga-tui/auth"
	"github.com/josueBarretogit/manga-tui/config"
	"github.com/josueBarretogit/manga-tui/imaging"
	"github.com/josueBarretogit/manga-tui/log"
	"github.com/josueBarretogit/manga-tui/network"
	"github.com/josueBarretogit/manga-tui/provider/mangadex"
	"github.com/josueBarretogit/manga-tui/provider/manganato"
	"github.com/josueBarretogit/manga-tui/provider/weebcentral"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/samber/lo"
)

// MaxIDLength is the longest identifier accepted by the façade, in bytes.
const MaxIDLength = 512

// Options carries everything an adapter needs. It is built once per run.
type Options struct {
	Kind source.Kind

	// Client overrides the HTTP client of the adapter. Nil builds one from Timeout and BrowserTLS.
	Client     *http.Client
	Timeout    time.Duration
	BrowserTLS bool

	RequestsPerSecond int
	PageSize          int
	Language          string
	ContentRating     []string
	PreferredGroups   []string
	Quality           imaging.Quality

	// BaseURL overrides the address of the remote site.
	BaseURL string
}

// OptionsFrom builds adapter options from validated settings.
func OptionsFrom(settings *config.Settings) Options {
	return Options{
		Kind:              settings.Provider,
		Timeout:           settings.Timeout,
		BrowserTLS:        settings.BrowserTLS,
		RequestsPerSecond: settings.RequestsPerSecond,
		PageSize:          settings.PageSize,
		Language:          settings.Language,
		ContentRating:     settings.ContentRating,
		PreferredGroups:   settings.PreferredGroups,
		Quality:           settings.Quality,
	}
}

// Provider describes a built-in adapter.
type Provider struct {
	Kind source.Kind
	Name string
	Site string
	// Scraped providers parse HTML and talk to sites that fingerprint the TLS handshake.
	Scraped bool

	CreateSource func(options Options) source.Source
}

func (p *Provider) String() string {
	return p.Name
}

// Builtins returns the built-in providers in Kind order.
func Builtins() []*Provider {
	return []*Provider{
		{
			Kind: source.StructuredAPI,
			Name: mangadex.Name,
			Site: mangadex.BaseURL,
			CreateSource: func(options Options) source.Source {
				return mangadex.New(mangadex.Options{
					BaseURL:           options.BaseURL,
					Client:            options.Client,
					RequestsPerSecond: options.RequestsPerSecond,
					PageSize:          options.PageSize,
					Language:          options.Language,
					ContentRating:     options.ContentRating,
					PreferredGroups:   options.PreferredGroups,
					Quality:           options.Quality,
					Token:             auth.Token,
				})
			},
		},
		{
			Kind:    source.ScrapedSiteA,
			Name:    weebcentral.Name,
			Site:    weebcentral.BaseURL,
			Scraped: true,
			CreateSource: func(options Options) source.Source {
				return weebcentral.New(weebcentral.Options{
					BaseURL:           options.BaseURL,
					Client:            options.Client,
					RequestsPerSecond: options.RequestsPerSecond,
				})
			},
		},
		{
			Kind:    source.ScrapedSiteB,
			Name:    manganato.Name,
			Site:    manganato.BaseURL,
			Scraped: true,
			CreateSource: func(options Options) source.Source {
				return manganato.New(manganato.Options{
					BaseURL:           options.BaseURL,
					Client:            options.Client,
					RequestsPerSecond: options.RequestsPerSecond,
				})
			},
		},
	}
}

// Get finds a provider by its name (case-insensitive) or its kind spelling.
func Get(name string) (*Provider, bool) {
	return lo.Find(Builtins(), func(p *Provider) bool {
		return strings.EqualFold(p.Name, name) || p.Kind.String() == name
	})
}

// GetKind finds the provider of the given kind.
func GetKind(kind source.Kind) (*Provider, bool) {
	return lo.Find(Builtins(), func(p *Provider) bool {
		return p.Kind == kind
	})
}

// ArgumentError is returned by the façade before any request is made.
type ArgumentError struct {
	Argument string
	Value    string
	Reason   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Argument, e.Value, e.Reason)
}

// Facade validates arguments and delegates to the adapter selected at construction.
type Facade struct {
	kind     source.Kind
	pageSize int
	source   source.Source
}

// New builds the façade for options.Kind.
func New(options Options) (*Facade, error) {
	p, ok := GetKind(options.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown provider kind %d", options.Kind)
	}

	if options.Client == nil {
		options.Client = network.New(network.Options{
			Timeout:    options.Timeout,
			BrowserTLS: options.BrowserTLS && p.Scraped,
		})
	}

	log.Debugf("using provider %s (%s)", p.Name, p.Kind)

	return Wrap(p.CreateSource(options), options.PageSize), nil
}

// Wrap puts an existing adapter behind the façade.
func Wrap(src source.Source, pageSize int) *Facade {
	return &Facade{
		kind:     src.Kind(),
		pageSize: pageSize,
		source:   src,
	}
}

func (f *Facade) Name() string {
	return f.source.Name()
}

func (f *Facade) Kind() source.Kind {
	return f.kind
}

func (f *Facade) Search(ctx context.Context, query source.Query) (*source.SearchPage, error) {
	if strings.TrimSpace(query.Term) == "" {
		return nil, &ArgumentError{Argument: "query", Value: query.Term, Reason: "must not be blank"}
	}

	if query.Page < 1 {
		return nil, &ArgumentError{Argument: "page", Value: fmt.Sprint(query.Page), Reason: "must be at least 1"}
	}

	if query.Limit <= 0 {
		query.Limit = f.pageSize
	}

	query.Term = strings.TrimSpace(query.Term)

	return f.source.Search(ctx, query)
}

// SearchAll walks result pages until an empty or last page, or until limit pages were read.
// A limit of 0 or less reads every page.
func (f *Facade) SearchAll(ctx context.Context, term string, limit int) ([]*source.Manga, error) {
	var mangas []*source.Manga

	for n := 1; limit <= 0 || n <= limit; n++ {
		page, err := f.Search(ctx, source.Query{Term: term, Page: n})
		if err != nil {
			return nil, err
		}

		mangas = append(mangas, page.Mangas...)

		if page.Done() {
			break
		}
	}

	return mangas, nil
}

func (f *Facade) MangaByID(ctx context.Context, mangaID string) (*source.Manga, error) {
	if err := ValidateID("manga id", mangaID); err != nil {
		return nil, err
	}

	return f.source.MangaByID(ctx, mangaID)
}

func (f *Facade) ChaptersOf(ctx context.Context, mangaID string) ([]*source.Chapter, error) {
	if err := ValidateID("manga id", mangaID); err != nil {
		return nil, err
	}

	return f.source.ChaptersOf(ctx, mangaID)
}

func (f *Facade) PagesOf(ctx context.Context, chapterID string) ([]*source.Page, error) {
	if err := ValidateID("chapter id", chapterID); err != nil {
		return nil, err
	}

	pages, err := f.source.PagesOf(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	if err := source.CheckContiguous(f.source.Name(), pages); err != nil {
		return nil, err
	}

	return pages, nil
}

// ValidateID rejects identifiers that could not have come from a provider.
func ValidateID(argument, id string) error {
	invalid := func(reason string) error {
		return &ArgumentError{Argument: argument, Value: id, Reason: reason}
	}

	if id == "" {
		return invalid("must not be empty")
	}

	if len(id) > MaxIDLength {
		return invalid(fmt.Sprintf("longer than %d bytes", MaxIDLength))
	}

	for _, r := range id {
		switch {
		case unicode.IsSpace(r), unicode.IsControl(r):
			return invalid("contains whitespace or control characters")
		case !urlSafe(r):
			return invalid(fmt.Sprintf("contains %q", r))
		}
	}

	return nil
}

// urlSafe reports whether r is an unreserved URL character or a path separator.
func urlSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case strings.ContainsRune("-._~/", r):
		return true
	default:
		return false
	}
}
