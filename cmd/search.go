package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/josueBarretogit/manga-tui/color"
	"github.com/josueBarretogit/manga-tui/icon"
	"github.com/josueBarretogit/manga-tui/key"
	"github.com/josueBarretogit/manga-tui/log"
	"github.com/josueBarretogit/manga-tui/query"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/style"
	"github.com/josueBarretogit/manga-tui/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("page", "n", 1, "Result page to display, starting from 1")
	searchCmd.Flags().IntP("limit", "l", 0, "Read result pages until this many were read, 0 reads all of them")
	searchCmd.Flags().BoolP("all", "a", false, "Read every result page instead of a single one")
	searchCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	searchCmd.MarkFlagsMutuallyExclusive("page", "all")

	searchCmd.SetOut(os.Stdout)
}

var searchCmd = &cobra.Command{
	Use:               "search [query]",
	Short:             "Search manga on the configured provider",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completionQueries,
	Example:           "  manga-tui search --provider manganato one piece",
	Run: func(cmd *cobra.Command, args []string) {
		term := strings.Join(args, " ")

		p, err := newPipeline()
		handleErr(err)

		ctx, cancel := interruptible()
		defer cancel()

		var (
			mangas []*source.Manga
			total  int
		)

		if lo.Must(cmd.Flags().GetBool("all")) {
			erase := util.PrintErasable(fmt.Sprintf("%s Searching %s...", icon.Get(icon.Search), p.facade.Name()))
			mangas, err = p.facade.SearchAll(ctx, term, lo.Must(cmd.Flags().GetInt("limit")))
			erase()
			handleErr(err)
			total = len(mangas)
		} else {
			page, err := p.facade.Search(ctx, source.Query{Term: term, Page: lo.Must(cmd.Flags().GetInt("page"))})
			handleErr(err)
			mangas, total = page.Mangas, max(page.Total, len(page.Mangas))
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			if len(mangas) > 0 {
				_ = query.Remember(term, 1)
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(mangas))
			return
		}

		if len(mangas) == 0 {
			cmd.Printf("%s no results for %s\n", icon.Get(icon.Fail), style.Fg(color.Yellow)(term))
			if suggestion := query.Suggest(term); suggestion.IsPresent() && viper.GetBool(key.SearchShowQuerySuggestions) {
				cmd.Printf("did you mean %s?\n", style.Fg(color.Yellow)(suggestion.MustGet()))
			}
			return
		}

		if err := query.Remember(term, 1); err != nil {
			log.Warnf("remembering query: %v", err)
		}

		cmd.Printf("%s %s on %s\n",
			icon.Get(icon.Search),
			util.Quantify(total, "result", "results"),
			style.Tag(style.Base, style.Peach)(p.facade.Name()),
		)
		for _, manga := range mangas {
			cmd.Printf("%s %s\n", style.Bold(manga.Title), style.Faint(manga.ID))
		}
	},
}

func completionQueries(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
}
