package cmd

import (
	"encoding/json"
	"os"

	"github.com/josueBarretogit/manga-tui/color"
	"github.com/josueBarretogit/manga-tui/history"
	"github.com/josueBarretogit/manga-tui/icon"
	"github.com/josueBarretogit/manga-tui/style"
	"github.com/josueBarretogit/manga-tui/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chaptersCmd)

	chaptersCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	chaptersCmd.SetOut(os.Stdout)
}

var chaptersCmd = &cobra.Command{
	Use:     "chapters [manga id]",
	Short:   "List the chapters of a manga in reading order",
	Long:    "List the chapters of a manga in reading order. Chapters already downloaded are marked.",
	Args:    cobra.ExactArgs(1),
	Example: "  manga-tui chapters --provider mangadex a1c7c817-4e59-43b7-9365-09675a149a6f",
	Run: func(cmd *cobra.Command, args []string) {
		p, err := newPipeline()
		handleErr(err)

		ctx, cancel := interruptible()
		defer cancel()

		chapters, err := p.facade.ChaptersOf(ctx, args[0])
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(chapters))
			return
		}

		cmd.Println(style.Header(util.Quantify(len(chapters), "chapter", "chapters")))

		for i, chapter := range chapters {
			mark := " "
			if downloaded, _ := history.IsDownloaded(chapter.Provider, chapter.ID); downloaded {
				mark = style.Fg(color.Green)(icon.Get(icon.Mark))
			}

			cmd.Printf("%s %s %s %s\n",
				style.Faint(util.PadIndex(i, len(chapters), 1)),
				mark,
				chapter,
				style.Faint(chapter.ID),
			)
		}
	},
}
