package main

import (
	"github.com/spf13/cobra"

	"mtgcollections/internal/collection"
)

var summarizeOutputDir string

var summarizeCmd = &cobra.Command{
	Use:   "summarize <dump.json>",
	Short: "Rewrite dump and summaries from an existing JSON dump",
	Long: `Reads a cards_<timestamp>.json dump written by "parse" and exports it
again under a fresh timestamp, without calling the vision model.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cards, err := collection.ReadDump(args[0])
		if err != nil {
			return err
		}
		outDir := summarizeOutputDir
		if outDir == "" {
			outDir = cfg.GetOutputDir()
		}
		art, err := collection.NewExporter(outDir, currentLogger()).Export(cards)
		if err != nil {
			return err
		}
		printArtifacts(cmd, art)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeOutputDir, "output", "o", "", "Output directory (default: output.dir from config, else current)")
}
