package mangadex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/imaging"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	komiID    = "a96676e5-8ae2-425e-b549-7f15dd34a6d8"
	chapterID = "0b0a2b33-6f3e-4a43-9d7a-5a2a0a8c0001"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

type server struct {
	*httptest.Server
	searches atomic.Int32
	auth     atomic.Value
}

func newServer(t *testing.T) *server {
	t.Helper()

	s := &server{}
	s.auth.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc("/manga", func(w http.ResponseWriter, r *http.Request) {
		s.searches.Add(1)
		s.auth.Store(r.Header.Get("Authorization"))
		if r.URL.Query().Get("offset") == "0" {
			_, _ = w.Write(fixture(t, "search.json"))
			return
		}
		_, _ = w.Write(fixture(t, "search_empty.json"))
	})
	mux.HandleFunc("/manga/"+komiID, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(fixture(t, "manga.json"))
	})
	mux.HandleFunc("/manga/"+komiID+"/feed", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("translatedLanguage[]"))
		if r.URL.Query().Get("offset") == "0" {
			_, _ = w.Write(fixture(t, "feed.json"))
			return
		}
		_, _ = w.Write(fixture(t, "feed_2.json"))
	})
	mux.HandleFunc("/at-home/server/"+chapterID, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(fixture(t, "at_home.json"))
	})
	mux.HandleFunc("/at-home/server/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newSource(s *server, options Options) *Source {
	options.BaseURL = s.URL
	options.Client = s.Client()
	return New(options)
}

func TestSearch(t *testing.T) {
	srv := newServer(t)
	src := newSource(srv, Options{PageSize: 2, Token: func() string { return "token" }})

	page, err := src.Search(context.Background(), source.Query{Term: "komi", Page: 1})
	require.NoError(t, err)

	require.Len(t, page.Mangas, 2)
	assert.False(t, page.Done())
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, "Bearer token", srv.auth.Load())

	komi := page.Mangas[0]
	assert.Equal(t, komiID, komi.ID)
	assert.Equal(t, "Komi Can't Communicate", komi.Title)
	assert.Equal(t, UploadURL+"/covers/"+komiID+"/cover-komi.jpg.512.jpg", komi.Cover)
	assert.Equal(t, source.StructuredAPI, komi.Provider)

	// falls back to the English alternative title
	assert.Equal(t, "Komi Doujin", page.Mangas[1].Title)
	assert.Empty(t, page.Mangas[1].Cover)

	next, err := src.Search(context.Background(), source.Query{Term: "komi", Page: 2})
	require.NoError(t, err)
	assert.True(t, next.Done())
}

func TestMangaByID(t *testing.T) {
	src := newSource(newServer(t), Options{})

	manga, err := src.MangaByID(context.Background(), komiID)
	require.NoError(t, err)
	assert.Equal(t, "Komi Can't Communicate", manga.Title)

	_, err = src.MangaByID(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}

func TestChaptersOf(t *testing.T) {
	t.Run("first upload wins without preferred groups", func(t *testing.T) {
		src := newSource(newServer(t), Options{})

		chapters, err := src.ChaptersOf(context.Background(), komiID)
		require.NoError(t, err)

		// chapter 2 is external, chapter 3 comes from the second feed page
		require.Len(t, chapters, 3)
		assert.Equal(t, chapterID, chapters[0].ID)
		assert.Equal(t, []string{"Slow Scans"}, chapters[0].Scanlators)
		assert.Equal(t, 1.5, chapters[1].Number)
		assert.Equal(t, 3.0, chapters[2].Number)
		assert.Empty(t, chapters[2].Volume)
		assert.Equal(t, komiID, chapters[0].MangaID)
	})

	t.Run("preferred group wins", func(t *testing.T) {
		src := newSource(newServer(t), Options{PreferredGroups: []string{"Fast Scans"}})

		chapters, err := src.ChaptersOf(context.Background(), komiID)
		require.NoError(t, err)

		require.Len(t, chapters, 3)
		assert.Equal(t, "0b0a2b33-6f3e-4a43-9d7a-5a2a0a8c0002", chapters[0].ID)
	})
}

func TestPagesOf(t *testing.T) {
	t.Run("high quality uses the original set", func(t *testing.T) {
		src := newSource(newServer(t), Options{Quality: imaging.High})

		pages, err := src.PagesOf(context.Background(), chapterID)
		require.NoError(t, err)

		require.Len(t, pages, 3)
		require.NoError(t, source.CheckContiguous(Name, pages))
		assert.True(t, strings.HasPrefix(pages[0].URL, "https://cmdxd98sb0x3yprd.mangadex.network/data/3303dd03ac8d27452cce3f2a882e94b2/1-"))
		assert.Equal(t, "png", pages[0].Extension())
	})

	t.Run("low quality uses the data saver set", func(t *testing.T) {
		src := newSource(newServer(t), Options{Quality: imaging.Low})

		pages, err := src.PagesOf(context.Background(), chapterID)
		require.NoError(t, err)
		assert.Contains(t, pages[2].URL, "/data-saver/")
		assert.Equal(t, 3, pages[2].Index)
	})

	t.Run("unknown chapter is a network error", func(t *testing.T) {
		src := newSource(newServer(t), Options{})

		_, err := src.PagesOf(context.Background(), "0b0a2b33-6f3e-4a43-9d7a-5a2a0a8c9999")
		assert.Equal(t, fault.KindNetwork, fault.KindOf(err))
		assert.False(t, fault.Retryable(err))
	})
}
