// Package manganato scrapes the Manganato family of sites (mangakakalot.gg layout).
package manganato

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/provider/remote"
	"github.com/josueBarretogit/manga-tui/source"
)

const (
	Name    = "Manganato"
	BaseURL = "https://www.mangakakalot.gg"

	language = "en"
)

var (
	mangaPath    = regexp.MustCompile(`/manga/([^/?#]+)`)
	chapterPath  = regexp.MustCompile(`/manga/([^/?#]+/[^/?#]+)`)
	lastPage     = regexp.MustCompile(`page=(\d+)`)
	chapterLabel = regexp.MustCompile(`(?i)chapter\s*(\d+(?:\.\d+)?)\s*:?\s*(.*)`)
	volumeLabel  = regexp.MustCompile(`(?i)vol\.?\s*(\w+)`)
	searchTerm   = regexp.MustCompile(`[^a-z0-9]+`)
)

var uploadLayouts = []string{"Jan-02-2006 15:04", "Jan 02,2006 15:04", "Jan 02,2006"}

// Options configures the adapter.
type Options struct {
	BaseURL           string
	Client            *http.Client
	RequestsPerSecond int
}

// Source is the Manganato adapter.
type Source struct {
	base   string
	remote *remote.Client
}

// New creates the adapter.
func New(options Options) *Source {
	base := options.BaseURL
	if base == "" {
		base = BaseURL
	}

	return &Source{
		base: strings.TrimSuffix(base, "/"),
		remote: remote.New(remote.Options{
			Provider:          Name,
			Client:            options.Client,
			RequestsPerSecond: options.RequestsPerSecond,
			Headers: map[string]string{
				"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
				"Accept-Language": "en-US,en;q=0.5",
				"Referer":         "https://google.com",
			},
		}),
	}
}

func (*Source) Name() string {
	return Name
}

func (*Source) Kind() source.Kind {
	return source.ScrapedSiteB
}

func (s *Source) pageHeaders() map[string]string {
	return map[string]string{"Referer": s.base + "/"}
}

// formatTerm turns "One Piece!" into "one_piece".
func formatTerm(term string) string {
	return strings.Trim(searchTerm.ReplaceAllString(strings.ToLower(term), "_"), "_")
}

func (s *Source) Search(ctx context.Context, query source.Query) (*source.SearchPage, error) {
	u := fmt.Sprintf("%s/search/story/%s?page=%d", s.base, formatTerm(query.Term), query.Page)

	doc, err := s.remote.Document(ctx, u, remote.SearchTTL, nil)
	if err != nil {
		return nil, err
	}

	page := &source.SearchPage{Page: query.Page}

	// no list at all means no results
	if doc.Find(".panel_story_list").Length() == 0 {
		page.Last = true
		return page, nil
	}

	var parseErr error
	doc.Find(".panel_story_list > *").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		manga, err := s.searchItem(u, item)
		if err != nil {
			parseErr = err
			return false
		}
		page.Mangas = append(page.Mangas, manga)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	page.Total = len(page.Mangas)
	if total := doc.Find(".panel_page_number > .group_qty > div").First(); total.Length() > 0 {
		if fields := strings.Fields(total.Text()); len(fields) > 1 {
			if n, err := strconv.Atoi(strings.ReplaceAll(fields[1], ",", "")); err == nil {
				page.Total = n
			}
		}
	}

	page.Last = true
	if href, ok := doc.Find(".panel_page_number a.page_last").Attr("href"); ok {
		if m := lastPage.FindStringSubmatch(href); m != nil {
			last, _ := strconv.Atoi(m[1])
			page.Last = query.Page >= last
		}
	}

	return page, nil
}

func (s *Source) searchItem(u string, item *goquery.Selection) (*source.Manga, error) {
	cover := item.Find("img").First()
	if err := s.remote.Require(cover, u, ".panel_story_list img", 1); err != nil {
		return nil, err
	}

	link := item.Find(".story_name > a").First()
	if err := s.remote.Require(link, u, ".story_name > a", 1); err != nil {
		return nil, err
	}

	href, _ := link.Attr("href")
	m := mangaPath.FindStringSubmatch(href)
	if m == nil {
		return nil, &fault.ParseError{Provider: Name, URL: u, Selector: ".story_name > a[href]", Expected: 1, Err: fmt.Errorf("no manga path in %q", href)}
	}

	src, _ := cover.Attr("src")

	return &source.Manga{
		ID:       m[1],
		Title:    strings.TrimSpace(link.Text()),
		Cover:    src,
		URL:      s.base + "/manga/" + m[1],
		Provider: source.ScrapedSiteB,
	}, nil
}

func (s *Source) mangaPage(ctx context.Context, mangaID string) (*goquery.Document, string, error) {
	u := s.base + "/manga/" + mangaID
	doc, err := s.remote.Document(ctx, u, remote.MangaTTL, nil)
	return doc, u, err
}

func (s *Source) MangaByID(ctx context.Context, mangaID string) (*source.Manga, error) {
	doc, u, err := s.mangaPage(ctx, mangaID)
	if err != nil {
		return nil, err
	}

	title := doc.Find(".manga-info-text h1").First()
	if err := s.remote.Require(title, u, ".manga-info-text h1", 1); err != nil {
		return nil, err
	}

	cover := doc.Find(".manga-info-pic img").First()
	if err := s.remote.Require(cover, u, ".manga-info-pic img", 1); err != nil {
		return nil, err
	}

	src, _ := cover.Attr("src")

	return &source.Manga{
		ID:       mangaID,
		Title:    strings.TrimSpace(title.Text()),
		Cover:    src,
		URL:      u,
		Provider: source.ScrapedSiteB,
	}, nil
}

// ChaptersOf parses the chapter list of the manga page, newest first on the site.
// For duplicate numbers the first listed wins, then the list is reversed into reading order.
func (s *Source) ChaptersOf(ctx context.Context, mangaID string) ([]*source.Chapter, error) {
	doc, u, err := s.mangaPage(ctx, mangaID)
	if err != nil {
		return nil, err
	}

	rows := doc.Find(".chapter-list > div")
	if err := s.remote.Require(rows, u, ".chapter-list > div", 1); err != nil {
		return nil, err
	}

	var mangaTitle string
	if h1 := doc.Find(".manga-info-text h1").First(); h1.Length() > 0 {
		mangaTitle = strings.TrimSpace(h1.Text())
	}

	chapters := make([]*source.Chapter, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").First()
		href, _ := link.Attr("href")

		m := chapterPath.FindStringSubmatch(href)
		if m == nil {
			return
		}

		chapter := &source.Chapter{
			ID:         m[1],
			MangaID:    mangaID,
			MangaTitle: mangaTitle,
			Language:   language,
			URL:        s.base + "/manga/" + m[1],
			Provider:   source.ScrapedSiteB,
		}

		label := strings.TrimSpace(link.Text())
		if parts := chapterLabel.FindStringSubmatch(label); parts != nil {
			chapter.Number, _ = strconv.ParseFloat(parts[1], 64)
			chapter.Title = strings.TrimSpace(parts[2])
		} else {
			chapter.Title = label
		}

		if parts := volumeLabel.FindStringSubmatch(label); parts != nil {
			chapter.Volume = parts[1]
		}

		if uploaded, ok := row.Find("span[title]").Last().Attr("title"); ok {
			chapter.PublishedAt = parseUpload(uploaded)
		}

		chapters = append(chapters, chapter)
	})

	return source.Reverse(source.Deduplicate(chapters, source.FirstWins)), nil
}

func (s *Source) PagesOf(ctx context.Context, chapterID string) ([]*source.Page, error) {
	u := s.base + "/manga/" + chapterID

	doc, err := s.remote.Document(ctx, u, remote.PagesTTL, nil)
	if err != nil {
		return nil, err
	}

	images := doc.Find(".container-chapter-reader img")
	if err := s.remote.Require(images, u, ".container-chapter-reader img", 1); err != nil {
		return nil, err
	}

	urls := make([]string, 0, images.Length())
	images.Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			src, _ = img.Attr("data-src")
		}
		urls = append(urls, strings.TrimSpace(src))
	})

	for i, src := range urls {
		if src == "" {
			return nil, &fault.ParseError{Provider: Name, URL: u, Selector: ".container-chapter-reader img[src]", Expected: len(urls), Found: i}
		}
	}

	return source.NewPages(chapterID, urls, s.pageHeaders()), nil
}

func parseUpload(value string) time.Time {
	for _, layout := range uploadLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
