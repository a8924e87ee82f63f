package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCompare(t *testing.T) {
	Convey("Versions compare semantically", t, func() {
		cases := []struct {
			a, b string
			want int
		}{
			{"0.6.0", "0.6.0", 0},
			{"v0.10.0", "0.9.9", 1},
			{"0.5.3", "0.6.0", -1},
			{"1.0.0", "v0.99.99", 1},
		}

		for _, c := range cases {
			got, err := Compare(c.a, c.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, c.want)
		}

		_, err := Compare("latest", "0.6.0")
		So(err, ShouldNotBeNil)
	})
}

func TestLatest(t *testing.T) {
	Convey("Given a releases endpoint", t, func() {
		hits := 0
		status := http.StatusOK
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"tag_name": "v0.7.1"}`))
		}))
		defer server.Close()

		previous := ReleasesURL
		ReleasesURL = server.URL
		defer func() { ReleasesURL = previous }()
		So(versionCacher.Set(""), ShouldBeNil)

		Convey("The tag is returned without its prefix and cached", func() {
			version, err := Latest(context.Background())
			So(err, ShouldBeNil)
			So(version, ShouldEqual, "0.7.1")

			version, err = Latest(context.Background())
			So(err, ShouldBeNil)
			So(version, ShouldEqual, "0.7.1")
			So(hits, ShouldEqual, 1)
		})

		Convey("A failing endpoint is a network error", func() {
			status = http.StatusBadGateway
			_, err := Latest(context.Background())
			So(fault.KindOf(err), ShouldEqual, fault.KindNetwork)
		})
	})
}
