package inline

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

type (
	MangaPicker    func([]*source.Manga) *source.Manga
	ChaptersFilter func([]*source.Chapter) ([]*source.Chapter, error)
	// Download stores the selected chapters of manga and reports where each one went.
	Download func(ctx context.Context, manga *source.Manga, chapters []*source.Chapter) ([]*Downloaded, error)
)

// Source is what inline mode needs from a provider, usually the façade.
type Source interface {
	Name() string
	SearchAll(ctx context.Context, term string, limit int) ([]*source.Manga, error)
	ChaptersOf(ctx context.Context, mangaID string) ([]*source.Chapter, error)
	PagesOf(ctx context.Context, chapterID string) ([]*source.Page, error)
}

type Options struct {
	Out    io.Writer
	Source Source
	Json   bool
	Query  string
	// SearchPages limits how many result pages are read, 0 reads all of them.
	SearchPages    int
	MangaPicker    mo.Option[MangaPicker]
	ChaptersFilter mo.Option[ChaptersFilter]
	Pages          bool
	Download       mo.Option[Download]
}

func ParseMangaPicker(kind, value string) (MangaPicker, error) {
	switch kind {
	case "first":
		return func(mangas []*source.Manga) *source.Manga {
			if len(mangas) == 0 {
				return nil
			}
			return mangas[0]
		}, nil
	case "last":
		return func(mangas []*source.Manga) *source.Manga {
			if len(mangas) == 0 {
				return nil
			}
			return mangas[len(mangas)-1]
		}, nil
	case "exact":
		return func(mangas []*source.Manga) *source.Manga {
			for _, m := range mangas {
				if strings.EqualFold(m.Title, value) {
					return m
				}
			}
			return nil
		}, nil
	default:
		idx, err := strconv.ParseUint(kind, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("unknown manga selector: %s", kind)
		}
		return func(mangas []*source.Manga) *source.Manga {
			if len(mangas) == 0 {
				return nil
			}
			i := util.Min(idx, uint64(len(mangas)-1))
			return mangas[i]
		}, nil
	}
}

// ParseChaptersFilter parses a chapter selector:
// "first", "last", "all", "3", "1-5" (indices from 0) or "@text@" (title substring).
func ParseChaptersFilter(description string) (ChaptersFilter, error) {
	switch description {
	case "first":
		return func(chapters []*source.Chapter) ([]*source.Chapter, error) {
			if len(chapters) == 0 {
				return chapters, nil
			}
			return chapters[:1], nil
		}, nil
	case "last":
		return func(chapters []*source.Chapter) ([]*source.Chapter, error) {
			if len(chapters) == 0 {
				return chapters, nil
			}
			return chapters[len(chapters)-1:], nil
		}, nil
	case "all":
		return func(chapters []*source.Chapter) ([]*source.Chapter, error) {
			return chapters, nil
		}, nil
	}

	if from, to, ok := strings.Cut(description, "-"); ok {
		start, err1 := strconv.ParseUint(from, 10, 16)
		end, err2 := strconv.ParseUint(to, 10, 16)
		if err1 == nil && err2 == nil {
			return func(chapters []*source.Chapter) ([]*source.Chapter, error) {
				start := util.Min(start, uint64(len(chapters)))
				end := util.Min(end+1, uint64(len(chapters)))
				if start > end {
					return []*source.Chapter{}, nil
				}
				return chapters[start:end], nil
			}, nil
		}
	}

	if len(description) > 1 && strings.HasPrefix(description, "@") && strings.HasSuffix(description, "@") {
		sub := strings.ToLower(description[1 : len(description)-1])
		return func(chapters []*source.Chapter) ([]*source.Chapter, error) {
			return lo.Filter(chapters, func(c *source.Chapter, _ int) bool {
				return strings.Contains(strings.ToLower(c.Title), sub)
			}), nil
		}, nil
	}

	if idx, err := strconv.ParseUint(description, 10, 16); err == nil {
		return func(chapters []*source.Chapter) ([]*source.Chapter, error) {
			if uint64(len(chapters)) <= idx {
				return []*source.Chapter{}, nil
			}
			return []*source.Chapter{chapters[idx]}, nil
		}, nil
	}

	return nil, fmt.Errorf("invalid chapter selector: %s", description)
}
