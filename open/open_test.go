package open

import (
	"testing"

	"github.com/josueBarretogit/manga-tui/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	Convey("Given a chapter archive", t, func() {
		const path = "/downloads/berserk/Ch 1 Vol 1.cbz"

		Convey("Without a viewer it should use the system handler", func() {
			cmd, ok := command(constant.Linux, path, "")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"xdg-open", path})
		})

		Convey("With a viewer on linux it should run the viewer", func() {
			cmd, ok := command(constant.Linux, path, "zathura")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"zathura", path})
		})

		Convey("With a viewer on darwin it should go through open", func() {
			cmd, ok := command(constant.Darwin, path, "YACReader")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"open", "-a", "YACReader", path})
		})

		Convey("On an unknown system it should fail", func() {
			_, ok := command("plan9", path, "")
			So(ok, ShouldBeFalse)
		})
	})
}
