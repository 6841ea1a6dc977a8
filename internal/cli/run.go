package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract then chunk every raw note",
	Long: `Run executes the full pipeline:
- Extract text from every file of paths.raw_dir (.txt, .pdf, .docx)
- Write <name>.txt files into paths.extracted_dir
- Chunk every extracted file into <name>_chunks.json in paths.chunks_dir

Unsupported, empty and unreadable files are reported and skipped; they never
stop the run.

Example:
  notechunk run
  notechunk run --provider none
  notechunk run --workers 4 --output-dir ./out`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract text from the raw notes only",
	Long: `Extract reads every file of paths.raw_dir and writes its text to
paths.extracted_dir as <name>.txt, without chunking.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(extractCmd)

	runCmd.Flags().String("raw-dir", "", "directory holding the raw notes")
	runCmd.Flags().String("sqlite", "", "also index chunks into this SQLite database")
	runCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
	extractCmd.Flags().String("raw-dir", "", "directory holding the raw notes")
}

func bindRunFlags(cmd *cobra.Command) {
	bindFlag(cmd, "paths.raw_dir", "raw-dir")
	bindFlag(cmd, "output.sqlite_path", "sqlite")
	bindFlag(cmd, "output.metrics_file", "metrics-file")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	bindRunFlags(cmd)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, viper.GetViper(), true)
	if err != nil {
		return err
	}
	defer a.close()

	printBanner("notechunk run", a)

	summary, err := a.pipeline.Run(ctx)
	if summary != nil {
		summary.Print(os.Stderr)
	}
	return err
}

func runExtract(cmd *cobra.Command, args []string) error {
	bindRunFlags(cmd)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, viper.GetViper(), false)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Fprintf(os.Stderr, "⚙️  Extracting %s → %s (%s)\n", a.cfg.Paths.RawDir, a.cfg.Paths.ExtractedDir, strings.Join(a.pipeline.Formats(), ", "))
	results, err := a.pipeline.ExtractAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ %d files processed\n", len(results))
	return nil
}

// bindFlag maps a command-local flag onto a config key
func bindFlag(cmd *cobra.Command, key, name string) {
	if f := cmd.Flags().Lookup(name); f != nil {
		_ = viper.BindPFlag(key, f)
	}
}

func printBanner(title string, a *app) {
	model := "disabled (sentence grouping)"
	if a.provider != nil {
		model = a.provider.Name()
		if a.cfg.LLM.Model != "" {
			model += "/" + a.cfg.LLM.Model
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Raw notes:    %s\n", a.cfg.Paths.RawDir)
	fmt.Fprintf(os.Stderr, "  Formats:      %s\n", strings.Join(a.pipeline.Formats(), ", "))
	fmt.Fprintf(os.Stderr, "  Extracted:    %s\n", a.cfg.Paths.ExtractedDir)
	fmt.Fprintf(os.Stderr, "  Chunks:       %s\n", a.cfg.Paths.ChunksDir)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", a.cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  LLM:          %s\n", model)
	if a.cfg.Output.SQLitePath != "" {
		fmt.Fprintf(os.Stderr, "  Index:        %s\n", a.cfg.Output.SQLitePath)
	}
	fmt.Fprintf(os.Stderr, "\n")
}
