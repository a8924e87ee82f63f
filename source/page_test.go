package source

import (
	"testing"

	"github.com/josueBarretogit/manga-tui/fault"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewPages(t *testing.T) {
	Convey("Given image urls in document order", t, func() {
		urls := []string{"https://a/1.png", "https://a/2.JPG?token=x"}
		pages := NewPages("ch", urls, map[string]string{"Referer": "https://a/"})

		Convey("Then pages should be indexed from one", func() {
			So(len(pages), ShouldEqual, 2)
			So(pages[0].Index, ShouldEqual, 1)
			So(pages[1].Index, ShouldEqual, 2)
			So(pages[1].Headers["Referer"], ShouldEqual, "https://a/")
		})

		Convey("Then the extension should come from the path", func() {
			So(pages[0].Extension(), ShouldEqual, "png")
			So(pages[1].Extension(), ShouldEqual, "jpg")
		})

		Convey("Then the sequence should be valid", func() {
			So(CheckContiguous("test", pages), ShouldBeNil)
		})
	})
}

func TestCheckContiguous(t *testing.T) {
	Convey("Given a page list with a gap", t, func() {
		pages := []*Page{{Index: 1}, {Index: 3}}

		Convey("Then a parse error should be returned", func() {
			err := CheckContiguous("test", pages)
			So(err, ShouldNotBeNil)
			So(fault.KindOf(err), ShouldEqual, fault.KindParse)
		})
	})

	Convey("Given no pages", t, func() {
		Convey("Then a parse error should be returned", func() {
			So(fault.KindOf(CheckContiguous("test", nil)), ShouldEqual, fault.KindParse)
		})
	})
}
