package integration

import (
	"testing"
	"time"

	"github.com/josueBarretogit/manga-tui/archive"
	"github.com/josueBarretogit/manga-tui/downloader"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/source"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQueue(t *testing.T) {
	Convey("Given an empty queue", t, func() {
		queue := NewQueue("/config/sync_queue.jsonl")
		queue.now = func() time.Time { return time.Unix(1700000000, 0) }
		So(queue.Clear(), ShouldBeNil)

		Convey("Pending is empty", func() {
			pending, err := queue.Pending()
			So(err, ShouldBeNil)
			So(pending, ShouldBeEmpty)
		})

		Convey("Recorded chapters are pending in order", func() {
			for _, id := range []string{"one", "two"} {
				So(queue.Record(downloader.Completion{
					Provider:  source.ScrapedSiteB,
					MangaID:   "manga",
					ChapterID: id,
					Format:    archive.Raw,
				}), ShouldBeNil)
			}

			pending, err := queue.Pending()
			So(err, ShouldBeNil)
			So(pending, ShouldHaveLength, 2)
			So(pending[0].Chapter.ChapterID, ShouldEqual, "one")
			So(pending[1].Chapter.ChapterID, ShouldEqual, "two")
			So(pending[0].Action, ShouldEqual, ActionMarkRead)
			So(pending[0].Timestamp, ShouldEqual, int64(1700000000))
			So(pending[1].Chapter.Provider, ShouldEqual, source.ScrapedSiteB)

			Convey("Clear empties it", func() {
				So(queue.Clear(), ShouldBeNil)
				pending, err := queue.Pending()
				So(err, ShouldBeNil)
				So(pending, ShouldBeEmpty)
			})
		})

		Convey("Malformed lines are skipped", func() {
			So(filesystem.API().WriteFile("/config/sync_queue.jsonl", []byte("not json\n"), 0o644), ShouldBeNil)
			So(queue.Record(downloader.Completion{ChapterID: "ok", Provider: source.StructuredAPI, Format: archive.CBZ}), ShouldBeNil)

			pending, err := queue.Pending()
			So(err, ShouldBeNil)
			So(pending, ShouldHaveLength, 1)
			So(pending[0].Chapter.ChapterID, ShouldEqual, "ok")
		})
	})
}
