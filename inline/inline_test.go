package inline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/josueBarretogit/manga-tui/source"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type library struct {
	mangas   []*source.Manga
	chapters map[string][]*source.Chapter
}

func (*library) Name() string { return "Library" }

func (l *library) SearchAll(_ context.Context, term string, _ int) ([]*source.Manga, error) {
	var found []*source.Manga
	for _, m := range l.mangas {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(term)) {
			found = append(found, m)
		}
	}
	return found, nil
}

func (l *library) ChaptersOf(_ context.Context, mangaID string) ([]*source.Chapter, error) {
	return l.chapters[mangaID], nil
}

func (*library) PagesOf(_ context.Context, chapterID string) ([]*source.Page, error) {
	return source.NewPages(chapterID, []string{"https://img/" + chapterID + "/1.png", "https://img/" + chapterID + "/2.png"}, nil), nil
}

func testLibrary() *library {
	return &library{
		mangas: []*source.Manga{
			{ID: "berserk", Title: "Berserk"},
			{ID: "berserk-deluxe", Title: "Berserk Deluxe"},
		},
		chapters: map[string][]*source.Chapter{
			"berserk": {
				{ID: "b1", Number: 1, Title: "The Black Swordsman", URL: "https://site/b1"},
				{ID: "b2", Number: 2, Title: "The Brand", URL: "https://site/b2"},
				{ID: "b3", Number: 3, Title: "The Guardians of Desire", URL: "https://site/b3"},
			},
		},
	}
}

func TestWriteJsonResponse(t *testing.T) {
	Convey("writeJsonResponse", t, func() {
		Convey("Should produce valid JSON for empty manga list", func() {
			var buf bytes.Buffer
			opts := &Options{Query: "test", Json: true}
			err := writeJson(&buf, nil, opts)
			So(err, ShouldBeNil)

			var output Output
			err = json.Unmarshal(buf.Bytes(), &output)
			So(err, ShouldBeNil)
			So(output.Query, ShouldEqual, "test")
			So(output.Result, ShouldHaveLength, 0)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a library", t, func() {
		var buf bytes.Buffer
		picker, err := ParseMangaPicker("first", "")
		So(err, ShouldBeNil)

		options := &Options{
			Out:         &buf,
			Source:      testLibrary(),
			Query:       "berserk",
			MangaPicker: mo.Some(picker),
		}

		Convey("Plain output lists chapter URLs of the picked manga", func() {
			So(Run(context.Background(), options), ShouldBeNil)
			So(buf.String(), ShouldEqual, "https://site/b1\nhttps://site/b2\nhttps://site/b3\n")
		})

		Convey("Pages replace chapter URLs when requested", func() {
			filter, err := ParseChaptersFilter("last")
			So(err, ShouldBeNil)
			options.ChaptersFilter = mo.Some(filter)
			options.Pages = true

			So(Run(context.Background(), options), ShouldBeNil)
			So(buf.String(), ShouldEqual, "https://img/b3/1.png\nhttps://img/b3/2.png\n")
		})

		Convey("JSON output carries the selection and downloads", func() {
			filter, err := ParseChaptersFilter("0-1")
			So(err, ShouldBeNil)
			options.ChaptersFilter = mo.Some(filter)
			options.Json = true
			options.Download = mo.Some[Download](func(_ context.Context, _ *source.Manga, chapters []*source.Chapter) ([]*Downloaded, error) {
				var downloaded []*Downloaded
				for _, c := range chapters {
					downloaded = append(downloaded, &Downloaded{ChapterID: c.ID, State: "completed", Path: "/dl/" + c.ID + ".cbz"})
				}
				return downloaded, nil
			})

			So(Run(context.Background(), options), ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Result, ShouldHaveLength, 1)
			So(output.Result[0].Source, ShouldEqual, "Library")
			So(output.Result[0].Chapters, ShouldHaveLength, 2)
			So(output.Result[0].Downloaded, ShouldHaveLength, 2)
			So(output.Result[0].Downloaded[1].Path, ShouldEqual, "/dl/b2.cbz")
		})
	})
}

func TestSelectors(t *testing.T) {
	chapters := testLibrary().chapters["berserk"]

	Convey("Chapter selectors", t, func() {
		cases := map[string][]string{
			"first":   {"b1"},
			"last":    {"b3"},
			"all":     {"b1", "b2", "b3"},
			"1":       {"b2"},
			"9":       {},
			"1-2":     {"b2", "b3"},
			"2-1":     {},
			"@brand@": {"b2"},
		}

		for description, expected := range cases {
			filter, err := ParseChaptersFilter(description)
			So(err, ShouldBeNil)

			selected, err := filter(chapters)
			So(err, ShouldBeNil)

			ids := []string{}
			for _, c := range selected {
				ids = append(ids, c.ID)
			}
			So(ids, ShouldResemble, expected)
		}

		_, err := ParseChaptersFilter("nope")
		So(err, ShouldNotBeNil)
	})

	Convey("Manga selectors", t, func() {
		mangas := testLibrary().mangas

		exact, err := ParseMangaPicker("exact", "berserk deluxe")
		So(err, ShouldBeNil)
		So(exact(mangas).ID, ShouldEqual, "berserk-deluxe")

		index, err := ParseMangaPicker("7", "")
		So(err, ShouldBeNil)
		So(index(mangas).ID, ShouldEqual, "berserk-deluxe")

		last, err := ParseMangaPicker("last", "")
		So(err, ShouldBeNil)
		So(last(nil), ShouldBeNil)

		_, err = ParseMangaPicker("middle", "")
		So(err, ShouldNotBeNil)
	})
}

func TestSchema(t *testing.T) {
	Convey("The schema describes the output", t, func() {
		data, err := json.Marshal(Schema())
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, "inline.Output")
		So(string(data), ShouldContainSubstring, "source.Chapter")
		So(string(data), ShouldContainSubstring, "rate_limited")
	})
}
