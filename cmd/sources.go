// Package cmd implements the command-line interface for manga-tui.
package cmd

import (
	"encoding/json"
	"os"

	"github.com/josueBarretogit/manga-tui/color"
	"github.com/josueBarretogit/manga-tui/key"
	"github.com/josueBarretogit/manga-tui/provider"
	"github.com/josueBarretogit/manga-tui/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

// sourcesCmd groups commands about the built-in providers.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the built-in manga providers",
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)

	sourcesListCmd.Flags().BoolP("raw", "r", false, "Print only the provider names")
	sourcesListCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	sourcesListCmd.MarkFlagsMutuallyExclusive("raw", "json")
	sourcesListCmd.SetOut(os.Stdout)
}

type sourceInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Site     string `json:"site"`
	Scraped  bool   `json:"scraped"`
	Selected bool   `json:"selected"`
}

// sourcesListCmd displays every provider and marks the configured one.
var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display every built-in provider",
	Run: func(cmd *cobra.Command, args []string) {
		selected, _ := provider.Get(viper.GetString(key.Provider))

		infos := lo.Map(provider.Builtins(), func(p *provider.Provider, _ int) sourceInfo {
			return sourceInfo{
				Name:     p.Name,
				Kind:     p.Kind.String(),
				Site:     p.Site,
				Scraped:  p.Scraped,
				Selected: selected != nil && selected.Kind == p.Kind,
			}
		})

		switch {
		case lo.Must(cmd.Flags().GetBool("json")):
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(infos))
		case lo.Must(cmd.Flags().GetBool("raw")):
			for _, info := range infos {
				cmd.Println(info.Name)
			}
		default:
			for _, info := range infos {
				name := style.Bold(info.Name)
				if info.Selected {
					name = style.Fg(color.Green)(name + " *")
				}
				cmd.Printf("%s %s %s\n", name, style.Faint(info.Kind), style.Fg(color.Blue)(info.Site))
			}
		}
	},
}
