package weebcentral

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const soloLeveling = "01J76XYCERXE60T7FKXVCCAQ0H"

func serve(t *testing.T, routes map[string]string) (*Source, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		key := r.URL.Path
		if r.URL.Path == "/search/data" {
			key += "?offset=" + r.URL.Query().Get("offset")
		}

		name, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		data, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)

	return New(Options{BaseURL: server.URL, Client: server.Client()}), &hits
}

func TestSearch(t *testing.T) {
	src, _ := serve(t, map[string]string{
		"/search/data?offset=0":  "search_1.html",
		"/search/data?offset=24": "search_empty.html",
	})

	page, err := src.Search(context.Background(), source.Query{Term: "solo", Page: 1})
	require.NoError(t, err)

	require.Len(t, page.Mangas, 2)
	assert.False(t, page.Done())

	first := page.Mangas[0]
	assert.Equal(t, soloLeveling, first.ID)
	assert.Equal(t, "Solo Leveling", first.Title)
	assert.Equal(t, "https://temp.compsci88.com/cover/fallback/01J76XYCERXE60T7FKXVCCAQ0H.jpg", first.Cover)
	assert.Equal(t, source.ScrapedSiteA, first.Provider)
	assert.Equal(t, "Solo Leveling: Ragnarok", page.Mangas[1].Title)

	next, err := src.Search(context.Background(), source.Query{Term: "solo", Page: 2})
	require.NoError(t, err)
	assert.Empty(t, next.Mangas)
	assert.True(t, next.Done())
}

func TestSearchMissingCover(t *testing.T) {
	src, hits := serve(t, map[string]string{
		"/search/data?offset=0": "search_missing_cover.html",
	})

	_, err := src.Search(context.Background(), source.Query{Term: "solo", Page: 1})

	var parseErr *fault.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, Name, parseErr.Provider)
	assert.Contains(t, parseErr.URL, "/search/data?text=solo")
	assert.Equal(t, "article picture img", parseErr.Selector)
	assert.Equal(t, 1, parseErr.Expected)
	assert.Equal(t, 0, parseErr.Found)
	assert.False(t, fault.Retryable(err))
	assert.Equal(t, int32(1), hits.Load())
}

func TestMangaByID(t *testing.T) {
	src, _ := serve(t, map[string]string{"/series/" + soloLeveling: "series.html"})

	manga, err := src.MangaByID(context.Background(), soloLeveling)
	require.NoError(t, err)
	assert.Equal(t, "Solo Leveling", manga.Title)
	assert.NotEmpty(t, manga.Cover)
}

func TestChaptersOf(t *testing.T) {
	src, _ := serve(t, map[string]string{"/series/" + soloLeveling + "/full-chapter-list": "chapters.html"})

	chapters, err := src.ChaptersOf(context.Background(), soloLeveling)
	require.NoError(t, err)

	require.Len(t, chapters, 4)
	numbers := make([]float64, len(chapters))
	for i, c := range chapters {
		numbers[i] = c.Number
	}
	assert.Equal(t, []float64{1, 2, 2.5, 3}, numbers)

	// the later upload of chapter 2 is listed first and wins
	assert.Equal(t, "01J76XZ7E6Q1K3P2M4N5B6V7B2", chapters[1].ID)
	assert.Equal(t, "en", chapters[0].Language)
	assert.Equal(t, 2024, chapters[0].PublishedAt.Year())
}

func TestChaptersOfEmptyList(t *testing.T) {
	src, _ := serve(t, map[string]string{"/series/" + soloLeveling + "/full-chapter-list": "search_empty.html"})

	_, err := src.ChaptersOf(context.Background(), soloLeveling)
	assert.Equal(t, fault.KindParse, fault.KindOf(err))
}

func TestPagesOf(t *testing.T) {
	src, _ := serve(t, map[string]string{"/chapters/01J76XZ7E6Q1K3P2M4N5B6V7A1/images": "images.html"})

	pages, err := src.PagesOf(context.Background(), "01J76XZ7E6Q1K3P2M4N5B6V7A1")
	require.NoError(t, err)

	require.Len(t, pages, 3)
	require.NoError(t, source.CheckContiguous(Name, pages))
	assert.Equal(t, "https://hot.planeptune.us/manga/Solo-Leveling/0001-003.png", pages[2].URL)
	assert.NotEmpty(t, pages[0].Headers["Referer"])
}

func TestPagesOfBlankImage(t *testing.T) {
	src, hits := serve(t, map[string]string{"/chapters/01J76XZ7E6Q1K3P2M4N5B6V7A1/images": "images_blank.html"})

	_, err := src.PagesOf(context.Background(), "01J76XZ7E6Q1K3P2M4N5B6V7A1")

	var parseErr *fault.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, Name, parseErr.Provider)
	assert.Equal(t, 3, parseErr.Expected)
	assert.Equal(t, 1, parseErr.Found)
	assert.False(t, fault.Retryable(err))
	assert.Equal(t, int32(1), hits.Load())
}
