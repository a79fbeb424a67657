package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ppiankov/vigil/internal/dictionary"
	"github.com/ppiankov/vigil/internal/model"
	"github.com/spf13/cobra"
)

// dictCmd represents the dict command
var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Inspect and validate keyword dictionaries",
	Long: `Inspect the keyword dictionaries used for matching.

Dictionaries come from dictionary.path (a YAML file) or the built-in set.
Every language must define all five categories: violent_actions, weapons,
events, targets and urgency.`,
}

var dictListCmd = &cobra.Command{
	Use:   "list [language]",
	Short: "List dictionary languages, or the entries of one language",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dicts, err := loadDictionaries()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			if !dicts.Has(args[0]) {
				return fmt.Errorf("no dictionary for language %q (available: %s)", args[0], strings.Join(dicts.Languages(), ", "))
			}
			d := dicts.Lookup(args[0])
			_, _ = fmt.Fprintf(out, "%s (%d entries)\n", d.Language(), d.Size())
			for _, c := range model.Categories {
				_, _ = fmt.Fprintf(out, "\n%s (weight %d):\n", c.Label(), c.Weight())
				for _, word := range d.Entries(c) {
					_, _ = fmt.Fprintf(out, "  %s\n", word)
				}
			}
			return nil
		}

		_, _ = fmt.Fprintf(out, "Source: %s\nBase language: %s\n\n", dicts.Source(), dicts.BaseLanguage())
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		header := []string{"LANGUAGE"}
		for _, c := range model.Categories {
			header = append(header, strings.ToUpper(string(c)))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(append(header, "TOTAL"), "\t"))
		for _, lang := range dicts.Languages() {
			d := dicts.Lookup(lang)
			row := []string{lang}
			for _, c := range model.Categories {
				row = append(row, fmt.Sprint(len(d.Entries(c))))
			}
			_, _ = fmt.Fprintln(tw, strings.Join(append(row, fmt.Sprint(d.Size())), "\t"))
		}
		return tw.Flush()
	},
}

var dictValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a dictionary file (default: the configured dictionaries)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			dicts *dictionary.Set
			err   error
		)
		if len(args) == 1 {
			dicts, err = dictionary.Load(args[0])
		} else {
			dicts, err = loadDictionaries()
		}
		if err != nil {
			return err
		}

		total := 0
		for _, lang := range dicts.Languages() {
			total += dicts.Lookup(lang).Size()
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d languages, %d entries, base %s\n",
			dicts.Source(), len(dicts.Languages()), total, dicts.BaseLanguage())
		return nil
	},
}

// loadDictionaries loads the configured dictionaries without opening the store
func loadDictionaries() (*dictionary.Set, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return dictionary.FromConfig(cfg.Dictionary)
}

func init() {
	rootCmd.AddCommand(dictCmd)
	dictCmd.AddCommand(dictListCmd)
	dictCmd.AddCommand(dictValidateCmd)
}
