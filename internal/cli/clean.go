package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/notechunk/internal/clean"
)

var cleanDryRun bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Reset intermediate outputs",
	Long: `Clean empties the intermediate directories under paths.output_dir
(extracted, chunks, embeddings, index, fad_generated by default) while keeping
the directories themselves, and deletes the pipeline cache file.

The raw notes directory is never touched. Failures are reported per path and
never stop the cleanup.

Example:
  notechunk clean
  notechunk clean --dry-run`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "list what would be removed without deleting")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	report := clean.New(clean.Options{
		OutputDir: cfg.Paths.OutputDir,
		Dirs:      cfg.Paths.CleanDirs,
		CacheFile: cfg.Paths.CacheFile,
		Protected: []string{cfg.Paths.RawDir},
		DryRun:    cleanDryRun,
	}, logger).Run()

	if report.OutputMissing {
		fmt.Fprintf(os.Stderr, "Output directory %s does not exist, nothing to clean\n", cfg.Paths.OutputDir)
		return nil
	}

	verb := "Emptied"
	if cleanDryRun {
		verb = "Would empty"
		for _, path := range report.Removed {
			fmt.Fprintf(os.Stderr, "  - %s\n", path)
		}
	}
	for _, dir := range report.Emptied {
		fmt.Fprintf(os.Stderr, "✓ %s %s\n", verb, filepath.Base(dir))
	}
	for _, dir := range report.Skipped {
		fmt.Fprintf(os.Stderr, "⚠️  Skipped protected directory %s\n", dir)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "✗ %v\n", e)
	}

	if !report.OK() {
		return fmt.Errorf("cleanup finished with %d errors", len(report.Errors))
	}
	fmt.Fprintf(os.Stderr, "✓ Cleanup complete (%d entries)\n", len(report.Removed))
	return nil
}
