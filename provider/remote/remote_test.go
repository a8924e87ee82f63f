package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	var hits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "yes", r.Header.Get("X-Default"))
		_, _ = w.Write([]byte(`{"name":"value"}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":`))
	})
	mux.HandleFunc("/html", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="item">a</div></body></html>`))
	})
	mux.HandleFunc("/limited", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(Options{
		Provider:          "test",
		Client:            server.Client(),
		RequestsPerSecond: 100,
		Headers:           map[string]string{"X-Default": "yes"},
	})
	ctx := context.Background()

	t.Run("json is cached for its ttl", func(t *testing.T) {
		var v struct{ Name string }
		require.NoError(t, c.JSON(ctx, server.URL+"/json", SearchTTL, nil, &v))
		require.NoError(t, c.JSON(ctx, server.URL+"/json", SearchTTL, nil, &v))

		assert.Equal(t, "value", v.Name)
		assert.Equal(t, int32(1), hits.Load())

		c.Forget()
		require.NoError(t, c.JSON(ctx, server.URL+"/json", 0, nil, &v))
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("malformed json is a parse error", func(t *testing.T) {
		var v struct{ Name string }
		err := c.JSON(ctx, server.URL+"/broken", SearchTTL, nil, &v)
		assert.Equal(t, fault.KindParse, fault.KindOf(err))
	})

	t.Run("missing elements are a parse error", func(t *testing.T) {
		doc, err := c.Document(ctx, server.URL+"/html", 0, nil)
		require.NoError(t, err)

		assert.NoError(t, c.Require(doc.Find(".item"), server.URL+"/html", ".item", 1))

		err = c.Require(doc.Find(".cover"), server.URL+"/html", ".cover", 1)
		var parseErr *fault.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 0, parseErr.Found)
		assert.Equal(t, server.URL+"/html", parseErr.URL)
	})

	t.Run("rate limiting responses are classified", func(t *testing.T) {
		_, err := c.Get(ctx, server.URL+"/limited", 0, nil)
		assert.Equal(t, fault.KindRateLimited, fault.KindOf(err))
		assert.True(t, fault.Retryable(err))
	})
}
