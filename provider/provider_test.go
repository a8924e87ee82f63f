package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/source"
	. "github.com/smartystreets/goconvey/convey"
)

// stub serves a fixed number of result pages and counts the requests it receives.
type stub struct {
	pages    int
	searches []source.Query
	pagesOf  []*source.Page
}

func (*stub) Name() string      { return "stub" }
func (*stub) Kind() source.Kind { return source.ScrapedSiteA }

func (s *stub) Search(_ context.Context, query source.Query) (*source.SearchPage, error) {
	s.searches = append(s.searches, query)

	page := &source.SearchPage{Page: query.Page}
	if query.Page <= s.pages {
		page.Mangas = []*source.Manga{{ID: "m" + string(rune('0'+query.Page)), Title: query.Term}}
	}
	return page, nil
}

func (*stub) MangaByID(_ context.Context, mangaID string) (*source.Manga, error) {
	return &source.Manga{ID: mangaID}, nil
}

func (*stub) ChaptersOf(context.Context, string) ([]*source.Chapter, error) {
	return nil, nil
}

func (s *stub) PagesOf(context.Context, string) ([]*source.Page, error) {
	return s.pagesOf, nil
}

func TestGet(t *testing.T) {
	Convey("When trying to get an invalid provider", t, func() {
		_, ok := Get("kek")
		Convey("Then ok should be false", func() {
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Providers are found by name or kind spelling", t, func() {
		p, ok := Get("mangadex")
		So(ok, ShouldBeTrue)
		So(p.Kind, ShouldEqual, source.StructuredAPI)

		p, ok = Get("scraped-site-b")
		So(ok, ShouldBeTrue)
		So(p.Name, ShouldEqual, "Manganato")
		So(p.Scraped, ShouldBeTrue)
	})

	Convey("Every kind has a builtin", t, func() {
		for _, kind := range source.Kinds() {
			p, ok := GetKind(kind)
			So(ok, ShouldBeTrue)
			So(p.CreateSource(Options{Kind: kind}).Kind(), ShouldEqual, kind)
		}
	})
}

func TestNew(t *testing.T) {
	Convey("New selects the adapter of the configured kind", t, func() {
		f, err := New(Options{Kind: source.ScrapedSiteA, RequestsPerSecond: 1})
		So(err, ShouldBeNil)
		So(f.Kind(), ShouldEqual, source.ScrapedSiteA)
		So(f.Name(), ShouldEqual, "Weebcentral")
	})

	Convey("New rejects an unknown kind", t, func() {
		_, err := New(Options{Kind: source.Kind(42)})
		So(err, ShouldNotBeNil)
	})
}

func TestSearchAll(t *testing.T) {
	Convey("Given a source with two result pages", t, func() {
		s := &stub{pages: 2}
		f := Wrap(s, 10)

		Convey("SearchAll stops at the first empty page", func() {
			mangas, err := f.SearchAll(context.Background(), "berserk", 0)
			So(err, ShouldBeNil)
			So(mangas, ShouldHaveLength, 2)
			So(s.searches, ShouldHaveLength, 3)
			So(s.searches[2].Page, ShouldEqual, 3)
			So(s.searches[0].Limit, ShouldEqual, 10)
		})

		Convey("SearchAll honours the page limit", func() {
			mangas, err := f.SearchAll(context.Background(), "berserk", 1)
			So(err, ShouldBeNil)
			So(mangas, ShouldHaveLength, 1)
			So(s.searches, ShouldHaveLength, 1)
		})
	})
}

func TestValidation(t *testing.T) {
	Convey("Given a façade", t, func() {
		s := &stub{pages: 1}
		f := Wrap(s, 10)
		ctx := context.Background()

		Convey("Blank queries never reach the source", func() {
			_, err := f.Search(ctx, source.Query{Term: "  \t", Page: 1})
			var argErr *ArgumentError
			So(errors.As(err, &argErr), ShouldBeTrue)
			So(argErr.Argument, ShouldEqual, "query")
			So(s.searches, ShouldBeEmpty)
		})

		Convey("Pages start at 1", func() {
			_, err := f.Search(ctx, source.Query{Term: "x", Page: 0})
			So(err, ShouldNotBeNil)
			So(s.searches, ShouldBeEmpty)
		})

		Convey("Malformed identifiers are rejected", func() {
			for _, id := range []string{
				"",
				"a b",
				"a\x00b",
				"a?b=c",
				"ünicode",
				strings.Repeat("a", MaxIDLength+1),
			} {
				_, err := f.MangaByID(ctx, id)
				So(err, ShouldNotBeNil)
			}
		})

		Convey("Provider identifiers are accepted", func() {
			for _, id := range []string{
				"a96676e5-8ae2-425e-b549-7f15dd34a6d8",
				"01J76XYCERXE60T7FKXVCCAQ0H",
				"the-ruthless-boss-wants-a-divorce/chapter-3",
			} {
				So(ValidateID("id", id), ShouldBeNil)
			}
		})

		Convey("Sparse page lists are a parse error", func() {
			s.pagesOf = []*source.Page{{Index: 1}, {Index: 3}}
			_, err := f.PagesOf(ctx, "chapter")
			So(fault.KindOf(err), ShouldEqual, fault.KindParse)
		})
	})
}
