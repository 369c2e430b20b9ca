package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mtgcollections/cmd/mtgc/ui"
	"mtgcollections/internal/config"
	"mtgcollections/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	cfg    = config.DefaultConfig()
	styles = ui.DefaultStyles()

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mtgc",
	Short: "mtgc - catalogue Magic: The Gathering cards from photos",
	Long: `mtgc reads photos of Magic: The Gathering cards, asks a vision model which
cards it sees and in which language, and writes the collection out as a JSON
dump plus one "<count>x <name>" summary per language.

It can also translate card names, or whole card lists, to their canonical
English names through Scryfall.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Arguments are valid by now; later failures are not usage errors.
		cmd.SilenceUsage = true

		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logging.For(logger, logging.CategoryBoot).Debug("Configuration loaded",
			zap.String("config", configPath),
			zap.String("model", cfg.Vision.Model),
			zap.String("lookup_url", cfg.Lookup.BaseURL))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Overall operation timeout (0 = none)")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(summarizeCmd)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. Errors go to
// stderr; argument errors are followed by the command's usage text.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, styles.Error.Render("Error:"), err)
	// PersistentPreRunE silences usage once arguments validated, so a
	// command still showing usage failed on its arguments or flags.
	if cmd != nil && cmd != rootCmd && !cmd.SilenceUsage {
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return 1
}

// commandContext returns a context cancelled on SIGINT/SIGTERM and, when
// --timeout is set, after the timeout.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// currentLogger returns the process logger, or a no-op one before
// initialization.
func currentLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
