package filesystem

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestPublish(t *testing.T) {
	Convey("Given a temporary file next to an older final file", t, func() {
		SetMemMapFs()
		So(API().WriteFile("/out/chapter.cbz", []byte("old"), 0o644), ShouldBeNil)
		So(API().WriteFile("/out/.chapter.cbz.tmp", []byte("new"), 0o644), ShouldBeNil)

		Convey("Publish replaces the final file and removes the temporary one", func() {
			So(Publish("/out/.chapter.cbz.tmp", "/out/chapter.cbz"), ShouldBeNil)

			data, err := API().ReadFile("/out/chapter.cbz")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "new")

			exists, err := Exists("/out/.chapter.cbz.tmp")
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})
	})

	Convey("Given a temporary directory", t, func() {
		SetMemMapFs()
		So(API().WriteFile("/out/.tmp-ch1/0001.png", []byte("a"), 0o644), ShouldBeNil)

		Convey("Publish moves the whole tree", func() {
			So(Publish("/out/.tmp-ch1", "/out/ch1"), ShouldBeNil)

			exists, err := Exists("/out/ch1/0001.png")
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})
	})
}
