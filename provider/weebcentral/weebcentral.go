// Package weebcentral scrapes weebcentral.com.
package weebcentral

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
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
	Name    = "Weebcentral"
	BaseURL = "https://weebcentral.com"

	pageSize = 24
	language = "en"
)

var (
	seriesID  = regexp.MustCompile(`/series/([^/?#]+)`)
	chapterID = regexp.MustCompile(`/chapters/([^/?#]+)`)
	number    = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

// Options configures the adapter.
type Options struct {
	BaseURL           string
	Client            *http.Client
	RequestsPerSecond int
}

// Source is the Weebcentral adapter.
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
			},
		}),
	}
}

func (*Source) Name() string {
	return Name
}

func (*Source) Kind() source.Kind {
	return source.ScrapedSiteA
}

// pageHeaders are required by the image host.
func (s *Source) pageHeaders() map[string]string {
	return map[string]string{"Referer": s.base + "/"}
}

func (s *Source) Search(ctx context.Context, query source.Query) (*source.SearchPage, error) {
	u := fmt.Sprintf(
		"%s/search/data?text=%s&limit=%d&offset=%d&sort=Best+Match&order=Descending&official=Any&anime=Any&adult=Any&display_mode=Full+Display",
		s.base, url.QueryEscape(query.Term), pageSize, (query.Page-1)*pageSize,
	)

	doc, err := s.remote.Document(ctx, u, remote.SearchTTL, nil)
	if err != nil {
		return nil, err
	}

	page := &source.SearchPage{Page: query.Page}

	var parseErr error
	// covers are wrapped in a nested article
	items := doc.Find("article").FilterFunction(func(_ int, article *goquery.Selection) bool {
		return article.ParentsFiltered("article").Length() == 0
	})

	items.EachWithBreak(func(_ int, article *goquery.Selection) bool {
		manga, err := s.searchItem(u, article)
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

	// the site renders a "view more" button while results remain
	page.Last = doc.Find(`button[hx-get*="/search/data"]`).Length() == 0

	return page, nil
}

func (s *Source) searchItem(u string, article *goquery.Selection) (*source.Manga, error) {
	link := article.Find(`a[href*="/series/"]`).First()
	if err := s.remote.Require(link, u, `article a[href*="/series/"]`, 1); err != nil {
		return nil, err
	}

	href, _ := link.Attr("href")
	id := firstGroup(seriesID, href)
	if id == "" {
		return nil, &fault.ParseError{Provider: Name, URL: u, Selector: "series href", Expected: 1, Err: fmt.Errorf("no series id in %q", href)}
	}

	cover := article.Find("picture img").First()
	if err := s.remote.Require(cover, u, "article picture img", 1); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(article.Find("a.line-clamp-1, .truncate").First().Text())
	if title == "" {
		if alt, ok := cover.Attr("alt"); ok {
			title = strings.TrimSpace(strings.TrimSuffix(alt, " cover"))
		}
	}

	return &source.Manga{
		ID:       id,
		Title:    title,
		Cover:    imageURL(cover),
		URL:      s.base + "/series/" + id,
		Provider: source.ScrapedSiteA,
	}, nil
}

func (s *Source) MangaByID(ctx context.Context, mangaID string) (*source.Manga, error) {
	u := s.base + "/series/" + mangaID

	doc, err := s.remote.Document(ctx, u, remote.MangaTTL, nil)
	if err != nil {
		return nil, err
	}

	title := doc.Find("h1").First()
	if err := s.remote.Require(title, u, "h1", 1); err != nil {
		return nil, err
	}

	cover := doc.Find("picture img").First()
	if err := s.remote.Require(cover, u, "picture img", 1); err != nil {
		return nil, err
	}

	return &source.Manga{
		ID:       mangaID,
		Title:    strings.TrimSpace(title.Text()),
		Cover:    imageURL(cover),
		URL:      u,
		Provider: source.ScrapedSiteA,
	}, nil
}

// ChaptersOf parses the full chapter list. The site lists the newest chapter first:
// for duplicate numbers the first listed (latest upload) wins, then the list is
// reversed into reading order.
func (s *Source) ChaptersOf(ctx context.Context, mangaID string) ([]*source.Chapter, error) {
	u := s.base + "/series/" + mangaID + "/full-chapter-list"

	doc, err := s.remote.Document(ctx, u, remote.ChaptersTTL, nil)
	if err != nil {
		return nil, err
	}

	links := doc.Find(`a[href*="/chapters/"]`)
	if err := s.remote.Require(links, u, `a[href*="/chapters/"]`, 1); err != nil {
		return nil, err
	}

	chapters := make([]*source.Chapter, 0, links.Length())
	links.Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		id := firstGroup(chapterID, href)
		if id == "" {
			return
		}

		label := strings.TrimSpace(link.Find("span.grow > span").First().Text())
		if label == "" {
			label = strings.TrimSpace(link.Text())
		}

		chapter := &source.Chapter{
			ID:       id,
			MangaID:  mangaID,
			Language: language,
			URL:      s.base + "/chapters/" + id,
			Provider: source.ScrapedSiteA,
		}

		if n, err := strconv.ParseFloat(firstGroup(number, label), 64); err == nil {
			chapter.Number = n
		} else {
			chapter.Title = label
		}

		if datetime, ok := link.Find("time[datetime]").Attr("datetime"); ok {
			chapter.PublishedAt, _ = time.Parse(time.RFC3339, datetime)
		}

		chapters = append(chapters, chapter)
	})

	return source.Reverse(source.Deduplicate(chapters, source.FirstWins)), nil
}

func (s *Source) PagesOf(ctx context.Context, chapterID string) ([]*source.Page, error) {
	u := s.base + "/chapters/" + chapterID + "/images?is_prev=False&current_page=1&reading_style=long_strip"

	doc, err := s.remote.Document(ctx, u, remote.PagesTTL, nil)
	if err != nil {
		return nil, err
	}

	images := doc.Find("img[src]")
	if err := s.remote.Require(images, u, "img[src]", 1); err != nil {
		return nil, err
	}

	urls := images.Map(func(_ int, img *goquery.Selection) string {
		return imageURL(img)
	})

	for i, src := range urls {
		if src == "" {
			return nil, &fault.ParseError{Provider: Name, URL: u, Selector: "img[src]", Expected: len(urls), Found: i}
		}
	}

	return source.NewPages(chapterID, urls, s.pageHeaders()), nil
}

// imageURL reads src, falling back to the first srcset candidate.
func imageURL(img *goquery.Selection) string {
	if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}

	srcset, _ := img.Attr("srcset")
	if fields := strings.Fields(srcset); len(fields) > 0 {
		return fields[0]
	}

	return ""
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return ""
}
