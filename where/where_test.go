package where

import (
	"os"
	"testing"

	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Directory resolvers create their directory", t, func() {
		for name, fn := range map[string]func() string{
			"Config":    Config,
			"Cache":     Cache,
			"Logs":      Logs,
			"Downloads": Downloads,
			"Temp":      Temp,
		} {
			Convey(name, func() {
				path := fn()
				So(path, ShouldNotBeEmpty)
				So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
			})
		}
	})

	Convey("Env overrides take precedence", t, func() {
		So(os.Setenv(EnvDownloadsPath, "/custom/downloads"), ShouldBeNil)
		defer os.Unsetenv(EnvDownloadsPath)

		So(Downloads(), ShouldEqual, "/custom/downloads")
	})

	Convey("File locations live inside their directories", t, func() {
		So(History(), ShouldStartWith, Config())
		So(SyncQueue(), ShouldStartWith, Config())
		So(Queries(), ShouldStartWith, Cache())
	})
}
