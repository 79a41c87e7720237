package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/statsheet/internal/config"
)

var (
	// Global flags
	cfgFile    string
	debug      bool
	quiet      bool
	flagOutDir string

	// Loaded configuration and the logger built from it
	cfg    *cfgpkg.Global
	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "statsheet",
	Short: "statsheet: summary statistics, histograms and a one-page report for a dataset",
	Long: `statsheet reads a CSV, TSV or XLSX dataset, computes descriptive statistics for every
numeric column, renders a miniature histogram per column and assembles both into a
single A4 landscape DOCX report. Each stage runs on its own and communicates through
files in the output directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error { return loadConfig(cmd) }
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.statsheet/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress messages")
	rootCmd.PersistentFlags().StringVar(&flagOutDir, "out-dir", "", "directory for all artifacts (overrides config)")
}

func loadConfig(cmd *cobra.Command) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	if rootCmd.PersistentFlags().Changed("out-dir") && flagOutDir != "" {
		c.OutDir = flagOutDir
	}
	cfg = c
	logger = newLogger(cmd.ErrOrStderr(), c.LogLevel, c.LogFormat, debug)
	return nil
}

func newLogger(w io.Writer, level, format string, debug bool) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if debug {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// progress prints a status line unless --quiet is set.
func progress(cmd *cobra.Command, format string, a ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", a...)
}
