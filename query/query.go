// Package query remembers search terms and suggests them back while typing.
package query

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/key"
	"github.com/josueBarretogit/manga-tui/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// maxRecords bounds the stored history; the least used terms are dropped first.
const maxRecords = 500

type queryRecord struct {
	Rank     int       `json:"rank"`
	Query    string    `json:"query"`
	LastUsed time.Time `json:"last_used"`
}

var cacher = gache.New[map[string]*queryRecord](
	&gache.Options{
		Path:       where.Queries(),
		FileSystem: &filesystem.GacheFs{},
	},
)

var (
	mu              sync.Mutex
	suggestionCache = make(map[string][]*queryRecord)
)

// Remember records a search term or raises its rank by weight.
func Remember(q string, weight int) error {
	q = sanitize(q)
	if q == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		cached = make(map[string]*queryRecord)
	}

	if record, ok := cached[q]; ok {
		record.Rank += weight
		record.LastUsed = time.Now()
	} else {
		cached[q] = &queryRecord{Rank: weight, Query: q, LastUsed: time.Now()}
	}

	if len(cached) > maxRecords {
		records := lo.Values(cached)
		slices.SortFunc(records, byRelevance)
		for _, record := range records[maxRecords:] {
			delete(cached, record.Query)
		}
	}

	clear(suggestionCache)
	return cacher.Set(cached)
}

// Suggest returns the best suggestion for a partial term.
func Suggest(q string) mo.Option[string] {
	suggestions := SuggestMany(q)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns remembered terms fuzzily matching q, most used first.
func SuggestMany(q string) []string {
	if !viper.GetBool(key.SearchShowQuerySuggestions) {
		return []string{}
	}

	q = sanitize(q)

	mu.Lock()
	defer mu.Unlock()

	records, ok := suggestionCache[q]
	if !ok {
		cached, expired, err := cacher.Get()
		if err != nil || expired || cached == nil {
			return []string{}
		}

		for _, record := range cached {
			if fuzzy.MatchNormalizedFold(q, record.Query) {
				records = append(records, record)
			}
		}

		slices.SortFunc(records, byRelevance)
		suggestionCache[q] = records
	}

	return lo.Map(records, func(r *queryRecord, _ int) string {
		return r.Query
	})
}

func byRelevance(a, b *queryRecord) int {
	if a.Rank != b.Rank {
		return b.Rank - a.Rank
	}
	return b.LastUsed.Compare(a.LastUsed)
}

func sanitize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
