// Package cmd implements the command-line interface for manga-tui.
package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/josueBarretogit/manga-tui/downloader"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/inline"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("query", "q", "", "The search query to execute for manga discovery")
	inlineCmd.Flags().StringP("manga", "m", "", "Criteria for selecting a manga from the search results")
	inlineCmd.Flags().StringP("chapters", "c", "", "Criteria for selecting chapters from the chosen manga")
	inlineCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	inlineCmd.Flags().BoolP("include-pages", "P", false, "Include the page image URLs of the selected chapters")
	inlineCmd.Flags().BoolP("download", "d", false, "Download the selected chapters")
	inlineCmd.Flags().Int("search-pages", 0, "Result pages read when searching, 0 reads all of them")
	inlineCmd.Flags().StringP("output", "o", "", "Specify a file path to write the command output")

	lo.Must0(inlineCmd.MarkFlagRequired("query"))
	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("query", completionQueries))
}

// inlineCmd executes the application in non-interactive, scriptable inline mode.
var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Execute the application in non-interactive, scriptable inline mode",
	Long: `Search, select and download without any prompt.

Manga selectors:
  first - first manga in the list
  last - last manga in the list
  exact - manga whose title is the query, ignoring case
  [number] - select manga by index (starting from 0)

Chapter selectors:
  first - first chapter in the list
  last - last chapter in the list
  all - all chapters in the list
  [number] - select chapter by index (starting from 0)
  [from]-[to] - select chapters by range
  @[substring]@ - select chapters by title substring

When using the json flag manga selector could be omitted. That way, it will select all mangas`,
	Example: "  manga-tui inline --query berserk --manga first --chapters 0-2 --download --json",
	PreRun: func(cmd *cobra.Command, args []string) {
		if !lo.Must(cmd.Flags().GetBool("json")) {
			lo.Must0(cmd.MarkFlagRequired("manga"))
		}
		if lo.Must(cmd.Flags().GetBool("download")) {
			lo.Must0(cmd.MarkFlagRequired("chapters"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		p, err := newPipeline()
		handleErr(err)

		ctx, cancel := interruptible()
		defer cancel()

		q := lo.Must(cmd.Flags().GetString("query"))

		var writer io.Writer = os.Stdout
		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			file, err := filesystem.API().Create(output)
			handleErr(err)
			defer util.Ignore(file.Close)
			writer = file
		}

		mangaPicker := mo.None[inline.MangaPicker]()
		if flag := lo.Must(cmd.Flags().GetString("manga")); flag != "" {
			fn, err := inline.ParseMangaPicker(flag, q)
			handleErr(err)
			mangaPicker = mo.Some(fn)
		}

		chaptersFilter := mo.None[inline.ChaptersFilter]()
		if flag := lo.Must(cmd.Flags().GetString("chapters")); flag != "" {
			fn, err := inline.ParseChaptersFilter(flag)
			handleErr(err)
			chaptersFilter = mo.Some(fn)
		}

		downloadFn := mo.None[inline.Download]()
		if lo.Must(cmd.Flags().GetBool("download")) {
			downloadFn = mo.Some[inline.Download](func(ctx context.Context, manga *source.Manga, chapters []*source.Chapter) ([]*inline.Downloaded, error) {
				return lo.Map(download(ctx, p, manga, chapters, io.Discard), func(task *downloader.Task, _ int) *inline.Downloaded {
					return downloaded(task)
				}), nil
			})
		}

		handleErr(inline.Run(ctx, &inline.Options{
			Out:            writer,
			Source:         p.facade,
			Json:           lo.Must(cmd.Flags().GetBool("json")),
			Query:          q,
			SearchPages:    lo.Must(cmd.Flags().GetInt("search-pages")),
			MangaPicker:    mangaPicker,
			ChaptersFilter: chaptersFilter,
			Pages:          lo.Must(cmd.Flags().GetBool("include-pages")),
			Download:       downloadFn,
		}))
	},
}

func downloaded(task *downloader.Task) *inline.Downloaded {
	d := &inline.Downloaded{
		ChapterID: task.Job.Chapter.ID,
		State:     task.State().String(),
	}

	if artifact := task.Archive(); artifact != nil {
		d.Path = artifact.Path
	}

	if err := task.Err(); err != nil {
		d.Error = err.Error()
		d.ErrorKind = string(fault.KindOf(err))
	}

	return d
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

// inlineSchemaCmd prints the JSON schema of the inline mode output.
var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema of the structured inline mode output",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(json.NewEncoder(os.Stdout).Encode(inline.Schema()))
	},
}
