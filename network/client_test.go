package network

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given default options", t, func() {
		c := New(Options{})

		Convey("Then the timeout should fall back to a minute", func() {
			So(c.Timeout, ShouldEqual, time.Minute)
		})

		Convey("Then a regular transport should be used", func() {
			_, ok := c.Transport.(*http.Transport)
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given browser TLS enabled", t, func() {
		c := New(Options{BrowserTLS: true, Timeout: time.Second})

		Convey("Then the browser transport should be used", func() {
			_, ok := c.Transport.(*BrowserTransport)
			So(ok, ShouldBeTrue)
		})

		Convey("When requesting a plain http server", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("ok"))
			}))
			defer server.Close()

			resp, err := c.Get(server.URL)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request should go through the plain transport", func() {
				body, _ := io.ReadAll(resp.Body)
				So(string(body), ShouldEqual, "ok")
			})
		})
	})
}
