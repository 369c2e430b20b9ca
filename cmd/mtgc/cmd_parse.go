package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mtgcollections/internal/collection"
	"mtgcollections/internal/logging"
	"mtgcollections/internal/perception"
	"mtgcollections/internal/ratelimit"
)

var (
	parseOutputDir string
	parseTraceFile string
)

var parseCmd = &cobra.Command{
	Use:   "parse <input-directory>",
	Short: "Extract cards from every photo in a directory",
	Long: `Sends every .jpg, .jpeg and .png file directly inside the directory to the
vision model, then writes:

  cards_<timestamp>.json        the full collection
  cards_<lang>_<timestamp>.txt  "<count>x <name>" lines per language

Files the model cannot handle are reported and skipped.`,
	Example: `  mtgc parse ./photos
  mtgc parse ./photos --output ./collections --trace vision.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutputDir, "output", "o", "", "Output directory (default: output.dir from config, else current)")
	parseCmd.Flags().StringVar(&parseTraceFile, "trace", "", "Append one JSON line per vision call to this file")
}

// newExtractor builds the vision client; replaced in tests.
var newExtractor = func(ctx context.Context) (perception.CardExtractor, string, error) {
	vcfg := cfg.VisionClientConfig()
	vcfg.Limiter = ratelimit.Every(cfg.GetVisionInterval())
	client, err := perception.NewVisionClient(ctx, vcfg)
	if err != nil {
		return nil, "", err
	}
	return client, client.Model(), nil
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateVision(); err != nil {
		return err
	}

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	outDir := parseOutputDir
	if outDir == "" {
		outDir = cfg.GetOutputDir()
	}

	ctx, cancel := commandContext()
	defer cancel()

	log := currentLogger()
	extractor, model, err := newExtractor(ctx)
	if err != nil {
		return err
	}

	var stores []perception.TraceStore
	if parseTraceFile != "" {
		store, err := perception.OpenFileTraceStore(parseTraceFile)
		if err != nil {
			return err
		}
		defer store.Close()
		stores = append(stores, store)
	}
	traced := perception.NewTracingExtractor(extractor, model, log, stores...)

	log.Info("Parsing card photos",
		zap.String("dir", dir),
		zap.String("output", outDir),
		zap.String("model", model))

	observer := progressObserver{
		LogObserver: collection.LogObserver{Logger: logging.For(log, logging.CategoryBatch)},
		out:         cmd.OutOrStdout(),
		styles:      styles,
	}
	cards, err := collection.NewProcessor(traced, log, observer).ProcessDirectory(ctx, dir)
	if err != nil {
		return err
	}

	art, err := collection.NewExporter(outDir, log).Export(cards)
	if err != nil {
		return err
	}
	printArtifacts(cmd, art)
	return nil
}

func printArtifacts(cmd *cobra.Command, art collection.Artifacts) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", styles.Title.Render("Dump:"), styles.Path.Render(art.Dump))
	for _, s := range art.Summaries {
		fmt.Fprintf(out, "%s %s %s\n",
			styles.Title.Render(fmt.Sprintf("Summary (%s):", s.Language)),
			styles.Path.Render(s.Path),
			styles.Muted.Render(fmt.Sprintf("%d distinct, %d total", s.Distinct, s.Total)))
	}
}
