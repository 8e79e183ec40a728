package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cartograph/internal/config"
)

var version = "0.3.0"

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "cartograph",
	Short:         "cartograph - document explorer layout tools",
	Long:          "Render document collections offline and move them between node files and the explorer database",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		renderCmd(),
		seedCmd(),
		exportCmd(),
	)
}

// cliLogger writes text logs to stderr so stdout stays clean for rendered output
func cliLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cartograph: %v\n", err)
		os.Exit(1)
	}
}

// loadExplorerConfig honours --config, then EXPLORER_CONFIG, then the embedded defaults
func loadExplorerConfig(path string) (*config.ExplorerConfig, error) {
	if path == "" {
		path = os.Getenv("EXPLORER_CONFIG")
	}
	return config.LoadExplorerConfig(path)
}
