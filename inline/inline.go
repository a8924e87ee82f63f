// Package inline runs a search, chapter selection and optional download without any prompt,
// for scripts and other programs.
package inline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/josueBarretogit/manga-tui/log"
	"github.com/josueBarretogit/manga-tui/source"
)

func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	mangas, err := options.Source.SearchAll(ctx, options.Query, options.SearchPages)
	if err != nil {
		return fmt.Errorf("search failed for %s: %w", options.Source.Name(), err)
	}

	var selected []*source.Manga
	if options.MangaPicker.IsPresent() {
		picker := options.MangaPicker.MustGet()
		if choice := picker(mangas); choice != nil {
			selected = []*source.Manga{choice}
		}
	} else {
		selected = mangas
	}

	result := make([]*Manga, 0, len(selected))
	for _, manga := range selected {
		prepared, err := prepareManga(ctx, manga, options)
		if err != nil {
			return err
		}
		result = append(result, prepared)
	}

	if options.Json {
		return writeJson(options.Out, result, options)
	}

	for _, manga := range result {
		for _, chapter := range manga.Chapters {
			log.Info("Found " + chapter.Chapter.String())
			if options.Pages && len(chapter.Pages) > 0 {
				for _, page := range chapter.Pages {
					fmt.Fprintln(options.Out, page.URL)
				}
			} else {
				fmt.Fprintln(options.Out, chapter.Chapter.URL)
			}
		}

		for _, d := range manga.Downloaded {
			if d.Path != "" {
				fmt.Fprintln(options.Out, d.Path)
			} else {
				fmt.Fprintf(options.Out, "%s: %s\n", d.ChapterID, d.Error)
			}
		}
	}

	return nil
}

func prepareManga(ctx context.Context, manga *source.Manga, options *Options) (*Manga, error) {
	chapters, err := options.Source.ChaptersOf(ctx, manga.ID)
	if err != nil {
		return nil, err
	}

	if options.ChaptersFilter.IsPresent() {
		filter := options.ChaptersFilter.MustGet()
		if chapters, err = filter(chapters); err != nil {
			return nil, err
		}
	}

	prepared := &Manga{
		Source:   options.Source.Name(),
		Manga:    manga,
		Chapters: make([]*Chapter, len(chapters)),
	}

	for i, chapter := range chapters {
		prepared.Chapters[i] = &Chapter{Chapter: chapter}

		if !options.Pages {
			continue
		}

		pages, err := options.Source.PagesOf(ctx, chapter.ID)
		if err != nil {
			log.Warnf("failed to fetch pages for %s: %v", chapter, err)
			continue
		}
		prepared.Chapters[i].Pages = pages
	}

	if download, ok := options.Download.Get(); ok && len(chapters) > 0 {
		if prepared.Downloaded, err = download(ctx, manga, chapters); err != nil {
			return nil, err
		}
	}

	return prepared, nil
}

func writeJson(out io.Writer, mangas []*Manga, options *Options) error {
	data, err := asJson(mangas, options.Query)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
