package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/josueBarretogit/manga-tui/constant"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/icon"
	"github.com/josueBarretogit/manga-tui/imaging"
	"github.com/josueBarretogit/manga-tui/key"
	"github.com/josueBarretogit/manga-tui/open"
	"github.com/josueBarretogit/manga-tui/prefetch"
	"github.com/josueBarretogit/manga-tui/style"
	"github.com/josueBarretogit/manga-tui/util"
	"github.com/josueBarretogit/manga-tui/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().IntP("start", "s", 1, "Page to start reading from")
	readCmd.Flags().StringP("dir", "d", "", "Directory the current page is written to, a temporary one by default")
	readCmd.Flags().Bool("keep", false, "Keep the written pages after reading")
	readCmd.Flags().BoolP("open", "o", false, "Open the page directory with reader.app")
}

var readCmd = &cobra.Command{
	Use:   "read [chapter id]",
	Short: "Walk through the pages of a chapter without downloading it",
	Long: `Walk through the pages of a chapter, writing each page to a directory as it is reached
so that an image viewer can show it. Pages around the current one are loaded ahead of time,
amount_pages on each side.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := newPipeline()
		handleErr(err)

		ctx, cancel := interruptible()
		defer cancel()

		pages, err := p.facade.PagesOf(ctx, args[0])
		handleErr(err)

		dir := lo.Must(cmd.Flags().GetString("dir"))
		if dir == "" {
			dir = filepath.Join(where.Temp(), util.SanitizeFilename(args[0]))
		}
		handleErr(filesystem.API().MkdirAll(dir, 0o755))
		if !lo.Must(cmd.Flags().GetBool("keep")) {
			defer util.Ignore(func() error { return util.Delete(dir) })
		}

		normalizer := imaging.New(p.settings.Quality)
		normalizer.MaxWidth = p.settings.MaxWidth
		normalizer.JPEGQuality = p.settings.JPEGQuality

		cache := prefetch.New(ctx, pages, prefetch.Options{
			Fetcher:     p.fetcher,
			Radius:      p.settings.AmountPages,
			Concurrency: p.settings.PrefetchConcurrency,
			Normalizer:  normalizer,
		})
		defer cache.Close()

		if lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(open.Start(dir, viper.GetString(key.ReaderApp)))
		}

		interactive := util.IsTerminal()
		index := min(max(lo.Must(cmd.Flags().GetInt("start")), 1), len(pages))

		for index >= 1 && index <= len(pages) {
			cache.Move(index)

			page, err := cache.Get(ctx, index)
			if err != nil {
				if ctx.Err() != nil {
					handleErr(ctx.Err())
				}
				fmt.Printf("%s page %d: %s\n", icon.Get(icon.Fail), index, err)
			} else {
				path := filepath.Join(dir, util.PadIndex(index, len(pages), constant.PageIndexWidth)+"."+page.Extension)
				handleErr(filesystem.API().WriteFile(path, page.Data, 0o644))
				fmt.Printf("%s %s %s\n", icon.Get(icon.Chapter), style.Bold(fmt.Sprintf("%d/%d", index, len(pages))), path)
			}

			if !interactive {
				index++
				continue
			}

			next, quit := askPage(index, len(pages))
			if quit {
				return
			}
			index = next
		}
	},
}

// askPage reads the next page to show: enter for the next one, p for the previous one,
// a number to jump, q to stop.
func askPage(current, total int) (next int, quit bool) {
	var answer string
	err := survey.AskOne(&survey.Input{
		Message: fmt.Sprintf("page %d/%d (enter next, p previous, q quit, or a page number)", current, total),
	}, &answer)
	if err != nil {
		return 0, true
	}

	switch answer = strings.TrimSpace(answer); answer {
	case "":
		return current + 1, false
	case "p":
		return max(current-1, 1), false
	case "q":
		return 0, true
	}

	if n, err := strconv.Atoi(answer); err == nil {
		return min(max(n, 1), total), false
	}
	return current, false
}
