package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mtgcollections/internal/lookup"
	"mtgcollections/internal/ratelimit"
	"mtgcollections/internal/translate"
)

var translateFile string

var translateCmd = &cobra.Command{
	Use:   "translate [card name...]",
	Short: "Translate card names to their canonical English names",
	Long: `Looks each name up with Scryfall's fuzzy search and prints
"<name> -> <english name>". With --file, every line of a card list
("3x Relâmpago") is translated and written to <file>_en<ext>.`,
	Example: `  mtgc translate "Relâmpago" "Ilha"
  mtgc translate --file deck.txt`,
	Args: func(cmd *cobra.Command, args []string) error {
		if translateFile == "" && len(args) == 0 {
			return errors.New("requires at least one card name or --file")
		}
		if translateFile != "" && len(args) > 0 {
			return errors.New("card names and --file are mutually exclusive")
		}
		return nil
	},
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVarP(&translateFile, "file", "f", "", "Translate a card list file")
}

// newLookuper builds the lookup client; replaced in tests.
var newLookuper = func() (translate.Lookuper, func()) {
	lcfg := cfg.LookupClientConfig()
	lcfg.Limiter = ratelimit.Every(cfg.GetLookupInterval())
	lcfg.Logger = currentLogger()
	client := lookup.NewClient(lcfg)
	return client, client.CloseIdleConnections
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	client, closeClient := newLookuper()
	defer closeClient()
	tr := translate.New(client, currentLogger())
	out := cmd.OutOrStdout()

	if translateFile != "" {
		path, err := tr.TranslateFile(ctx, translateFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", styles.Success.Render("Translated:"), styles.Path.Render(path))
		return nil
	}

	return tr.TranslateNames(ctx, args, func(r lookup.Result) {
		english := r.String()
		if !r.Found {
			english = styles.Warning.Render(english)
		}
		fmt.Fprintf(out, "%s -> %s\n", r.Query, english)
	})
}
