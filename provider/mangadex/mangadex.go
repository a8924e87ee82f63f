// Package mangadex adapts the MangaDex JSON API.
package mangadex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/imaging"
	"github.com/josueBarretogit/manga-tui/provider/remote"
	"github.com/josueBarretogit/manga-tui/source"
)

const (
	Name = "MangaDex"

	BaseURL   = "https://api.mangadex.org"
	UploadURL = "https://uploads.mangadex.org"

	feedPageSize = 500
	maxPageSize  = 100
)

// Options configures the adapter.
type Options struct {
	BaseURL   string
	UploadURL string
	Client    *http.Client

	RequestsPerSecond int
	PageSize          int

	// Language filters the chapter feed, e.g. "en".
	Language      string
	ContentRating []string
	// PreferredGroups win duplicate chapters, in order.
	PreferredGroups []string
	// Quality low selects the data-saver image set.
	Quality imaging.Quality

	// Token returns the bearer token; an empty token sends anonymous requests.
	Token func() string
}

// Source is the MangaDex adapter.
type Source struct {
	options Options
	remote  *remote.Client
}

// New creates the adapter.
func New(options Options) *Source {
	if options.BaseURL == "" {
		options.BaseURL = BaseURL
	}
	if options.UploadURL == "" {
		options.UploadURL = UploadURL
	}
	if options.PageSize <= 0 || options.PageSize > maxPageSize {
		options.PageSize = 20
	}
	if options.Language == "" {
		options.Language = "en"
	}

	return &Source{
		options: options,
		remote: remote.New(remote.Options{
			Provider:          Name,
			Client:            options.Client,
			RequestsPerSecond: options.RequestsPerSecond,
			Headers:           map[string]string{"Accept": "application/json"},
		}),
	}
}

func (*Source) Name() string {
	return Name
}

func (*Source) Kind() source.Kind {
	return source.StructuredAPI
}

// ValidID reports whether id has the shape of a MangaDex identifier.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

func (s *Source) headers() map[string]string {
	if s.options.Token == nil {
		return nil
	}

	token := s.options.Token()
	if token == "" {
		return nil
	}

	return map[string]string{"Authorization": "Bearer " + token}
}

func (s *Source) Search(ctx context.Context, query source.Query) (*source.SearchPage, error) {
	limit := s.options.PageSize
	if query.Limit > 0 && query.Limit <= maxPageSize {
		limit = query.Limit
	}
	offset := (query.Page - 1) * limit

	params := url.Values{}
	params.Set("title", query.Term)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Add("includes[]", "cover_art")
	params.Set("order[relevance]", "desc")
	for _, rating := range s.options.ContentRating {
		params.Add("contentRating[]", rating)
	}

	var resp searchResponse
	if err := s.remote.JSON(ctx, s.options.BaseURL+"/manga?"+params.Encode(), remote.SearchTTL, s.headers(), &resp); err != nil {
		return nil, err
	}

	page := &source.SearchPage{
		Page:  query.Page,
		Total: resp.Total,
		Last:  resp.Offset+len(resp.Data) >= resp.Total,
	}

	for i := range resp.Data {
		page.Mangas = append(page.Mangas, s.manga(&resp.Data[i]))
	}

	return page, nil
}

func (s *Source) MangaByID(ctx context.Context, mangaID string) (*source.Manga, error) {
	if !ValidID(mangaID) {
		return nil, fmt.Errorf("invalid mangadex id %q", mangaID)
	}

	var resp mangaResponse
	u := fmt.Sprintf("%s/manga/%s?includes[]=cover_art", s.options.BaseURL, mangaID)
	if err := s.remote.JSON(ctx, u, remote.MangaTTL, s.headers(), &resp); err != nil {
		return nil, err
	}

	if resp.Data.ID == "" {
		return nil, fault.Missing(Name, u, "data.id", 1, 0)
	}

	return s.manga(&resp.Data), nil
}

func (s *Source) manga(data *mangaData) *source.Manga {
	m := &source.Manga{
		ID:       data.ID,
		Title:    data.title(),
		URL:      "https://mangadex.org/title/" + data.ID,
		Provider: source.StructuredAPI,
	}

	if file := data.coverFile(); file != "" {
		m.Cover = fmt.Sprintf("%s/covers/%s/%s.512.jpg", s.options.UploadURL, data.ID, file)
	}

	return m
}

// ChaptersOf walks the whole feed. The feed is ordered by chapter then by
// readable date, so for duplicates the earliest upload comes first.
func (s *Source) ChaptersOf(ctx context.Context, mangaID string) ([]*source.Chapter, error) {
	if !ValidID(mangaID) {
		return nil, fmt.Errorf("invalid mangadex id %q", mangaID)
	}

	var chapters []*source.Chapter

	for offset := 0; ; offset += feedPageSize {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(feedPageSize))
		params.Set("offset", strconv.Itoa(offset))
		params.Add("translatedLanguage[]", s.options.Language)
		params.Add("includes[]", "scanlation_group")
		params.Set("order[chapter]", "asc")
		params.Set("order[readableAt]", "asc")
		for _, rating := range s.options.ContentRating {
			params.Add("contentRating[]", rating)
		}

		var resp feedResponse
		u := fmt.Sprintf("%s/manga/%s/feed?%s", s.options.BaseURL, mangaID, params.Encode())
		if err := s.remote.JSON(ctx, u, remote.ChaptersTTL, s.headers(), &resp); err != nil {
			return nil, err
		}

		for i := range resp.Data {
			data := &resp.Data[i]

			// hosted on another site, no pages to download
			if deref(data.Attributes.ExternalURL) != "" {
				continue
			}

			chapters = append(chapters, &source.Chapter{
				ID:          data.ID,
				MangaID:     mangaID,
				Number:      data.number(),
				Volume:      deref(data.Attributes.Volume),
				Title:       deref(data.Attributes.Title),
				Language:    data.Attributes.TranslatedLanguage,
				Scanlators:  data.groups(),
				URL:         "https://mangadex.org/chapter/" + data.ID,
				PublishedAt: data.Attributes.ReadableAt,
				Provider:    source.StructuredAPI,
			})
		}

		if len(resp.Data) == 0 || offset+len(resp.Data) >= resp.Total {
			break
		}
	}

	return source.Deduplicate(chapters, source.PreferGroups(s.options.PreferredGroups)), nil
}

func (s *Source) PagesOf(ctx context.Context, chapterID string) ([]*source.Page, error) {
	if !ValidID(chapterID) {
		return nil, fmt.Errorf("invalid mangadex id %q", chapterID)
	}

	var resp atHomeResponse
	u := fmt.Sprintf("%s/at-home/server/%s", s.options.BaseURL, chapterID)
	if err := s.remote.JSON(ctx, u, remote.PagesTTL, s.headers(), &resp); err != nil {
		return nil, err
	}

	set, files := "data", resp.Chapter.Data
	if s.options.Quality == imaging.Low && len(resp.Chapter.DataSaver) > 0 {
		set, files = "data-saver", resp.Chapter.DataSaver
	}

	if resp.BaseURL == "" || resp.Chapter.Hash == "" {
		return nil, fault.Missing(Name, u, "baseUrl and chapter.hash", 1, 0)
	}

	if len(files) == 0 {
		return nil, fault.Missing(Name, u, "chapter."+set, 1, 0)
	}

	urls := make([]string, len(files))
	for i, file := range files {
		urls[i] = fmt.Sprintf("%s/%s/%s/%s", resp.BaseURL, set, resp.Chapter.Hash, file)
	}

	return source.NewPages(chapterID, urls, nil), nil
}
