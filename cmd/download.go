package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/josueBarretogit/manga-tui/downloader"
	"github.com/josueBarretogit/manga-tui/history"
	"github.com/josueBarretogit/manga-tui/icon"
	"github.com/josueBarretogit/manga-tui/inline"
	"github.com/josueBarretogit/manga-tui/key"
	"github.com/josueBarretogit/manga-tui/open"
	"github.com/josueBarretogit/manga-tui/query"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/style"
	"github.com/josueBarretogit/manga-tui/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringP("manga-id", "m", "", "Download from this manga instead of searching")
	downloadCmd.Flags().StringP("manga", "M", "", "Manga selector applied to search results: first, last, exact or an index")
	downloadCmd.Flags().StringP("chapters", "c", "", "Chapter selector: first, last, all, an index, a range from-to or @substring@")
	downloadCmd.Flags().Int("search-pages", 1, "Result pages read when searching, 0 reads all of them")
	downloadCmd.Flags().BoolP("open", "o", false, "Open the downloaded chapter with reader.app, or the manga directory for several chapters")
	downloadCmd.MarkFlagsMutuallyExclusive("manga-id", "manga")

	downloadCmd.SetOut(os.Stdout)
}

var downloadCmd = &cobra.Command{
	Use:   "download [query]",
	Short: "Download chapters of a manga",
	Long: `Download chapters of a manga into the downloads directory.

Without selectors the manga and the chapters are chosen interactively.
Chapters are stored as cbz, epub or a directory of images depending on download_format.`,
	Example: `  manga-tui download --manga first --chapters 0-9 berserk
  manga-tui download --provider weebcentral --manga-id 01J76XYCPSY3C4BNPBRY8JMCBE --chapters last`,
	ValidArgsFunction: completionQueries,
	Run: func(cmd *cobra.Command, args []string) {
		mangaID := lo.Must(cmd.Flags().GetString("manga-id"))
		if mangaID == "" && len(args) == 0 {
			handleErr(errors.New("either a query or --manga-id is required"))
		}

		p, err := newPipeline()
		handleErr(err)

		ctx, cancel := interruptible()
		defer cancel()

		var manga *source.Manga
		if mangaID != "" {
			manga, err = p.facade.MangaByID(ctx, mangaID)
			handleErr(err)
		} else {
			manga, err = pickManga(ctx, p, strings.Join(args, " "), lo.Must(cmd.Flags().GetString("manga")), lo.Must(cmd.Flags().GetInt("search-pages")))
			handleErr(err)
		}

		chapters, err := p.facade.ChaptersOf(ctx, manga.ID)
		handleErr(err)

		chapters, err = pickChapters(chapters, lo.Must(cmd.Flags().GetString("chapters")))
		handleErr(err)

		if len(chapters) == 0 {
			cmd.Printf("%s no chapters selected\n", icon.Get(icon.Skip))
			return
		}

		cmd.Printf("%s %s from %s\n",
			icon.Get(icon.Download),
			util.Quantify(len(chapters), "chapter", "chapters"),
			style.Bold(manga.Title),
		)

		tasks := download(ctx, p, manga, chapters, cmd.OutOrStdout())

		failed := lo.CountBy(tasks, func(task *downloader.Task) bool {
			return task.State() != downloader.Completed
		})

		if lo.Must(cmd.Flags().GetBool("open")) && failed < len(tasks) {
			target := tasks[0].Job.Dir
			if len(tasks) == 1 {
				target = tasks[0].Archive().Path
			}
			handleErr(open.Start(target, viper.GetString(key.ReaderApp)))
		}
		if failed > 0 {
			handleErr(fmt.Errorf("%d of %s were not downloaded completely", failed, util.Quantify(len(tasks), "chapter", "chapters")))
		}
	},
}

// download enqueues every chapter and waits until all of them are terminal.
func download(ctx context.Context, p *pipeline, manga *source.Manga, chapters []*source.Chapter, out io.Writer) []*downloader.Task {
	var o *downloader.Orchestrator
	b := newBoard(out, func() []*downloader.Task { return o.Tasks() })
	o = p.orchestrator(b.progress, b.done)

	for _, chapter := range chapters {
		if chapter.MangaTitle == "" {
			chapter.MangaTitle = manga.Title
		}
		o.Enqueue(ctx, p.job(chapter))
	}

	o.Wait()
	return o.Tasks()
}

func pickManga(ctx context.Context, p *pipeline, term, selector string, searchPages int) (*source.Manga, error) {
	erase := util.PrintErasable(fmt.Sprintf("%s Searching %s...", icon.Get(icon.Search), p.facade.Name()))
	mangas, err := p.facade.SearchAll(ctx, term, searchPages)
	erase()
	if err != nil {
		return nil, err
	}

	if len(mangas) == 0 {
		return nil, fmt.Errorf("no manga found for %q on %s", term, p.facade.Name())
	}

	_ = query.Remember(term, 1)

	if selector != "" {
		picker, err := inline.ParseMangaPicker(selector, term)
		if err != nil {
			return nil, err
		}

		manga := picker(mangas)
		if manga == nil {
			return nil, fmt.Errorf("no manga matches %q", selector)
		}
		return manga, nil
	}

	if !util.IsTerminal() {
		return nil, errors.New("--manga is required when not running in a terminal")
	}

	var index int
	err = survey.AskOne(&survey.Select{
		Message:  "Select a manga",
		Options:  lo.Map(mangas, func(m *source.Manga, _ int) string { return m.Title }),
		PageSize: 15,
	}, &index)
	if err != nil {
		return nil, err
	}

	return mangas[index], nil
}

func pickChapters(chapters []*source.Chapter, selector string) ([]*source.Chapter, error) {
	if selector != "" {
		filter, err := inline.ParseChaptersFilter(selector)
		if err != nil {
			return nil, err
		}
		return filter(chapters)
	}

	if !util.IsTerminal() {
		return nil, errors.New("--chapters is required when not running in a terminal")
	}

	options := lo.Map(chapters, func(c *source.Chapter, _ int) string {
		name := c.String()
		if downloaded, _ := history.IsDownloaded(c.Provider, c.ID); downloaded {
			name += " " + icon.Get(icon.Mark)
		}
		return name
	})

	var indices []int
	err := survey.AskOne(&survey.MultiSelect{
		Message:  "Select chapters",
		Options:  options,
		PageSize: 20,
	}, &indices)
	if err != nil {
		return nil, err
	}

	return lo.Map(indices, func(i, _ int) *source.Chapter { return chapters[i] }), nil
}
