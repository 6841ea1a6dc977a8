package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/notechunk/internal/model"
	"github.com/ppiankov/notechunk/internal/pipeline"
	"github.com/ppiankov/notechunk/internal/worker"
)

// chunkCmd represents the chunk command
var chunkCmd = &cobra.Command{
	Use:   "chunk [file...]",
	Short: "Chunk extracted text files",
	Long: `Chunk turns text files into <name>_chunks.json artifacts in paths.chunks_dir.

Without arguments every *.txt file of paths.extracted_dir is chunked.
With arguments (or --list) only the given files are, in parallel with
--workers documents at a time; results are reported in input order.

Example:
  notechunk chunk
  notechunk chunk notes/atelier-1.txt notes/atelier-2.txt
  notechunk chunk --list files.txt --workers 4`,
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)

	chunkCmd.Flags().String("list", "", "file listing text files to chunk, one per line")
	chunkCmd.Flags().String("sqlite", "", "also index chunks into this SQLite database")
	chunkCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
}

func runChunk(cmd *cobra.Command, args []string) error {
	bindFlag(cmd, "output.sqlite_path", "sqlite")
	bindFlag(cmd, "output.metrics_file", "metrics-file")

	paths := append([]string(nil), args...)
	if list, _ := cmd.Flags().GetString("list"); list != "" {
		listed, err := worker.ReadPathsFromFile(list)
		if err != nil {
			return fmt.Errorf("read list: %w", err)
		}
		paths = append(paths, listed...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, viper.GetViper(), true)
	if err != nil {
		return err
	}
	defer a.close()

	var failed int
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "⚙️  Chunking %s → %s\n", a.cfg.Paths.ExtractedDir, a.cfg.Paths.ChunksDir)
		results, err := a.pipeline.ChunkAll(ctx)
		if err != nil {
			return err
		}
		failed = countFailed(results)
	} else {
		fmt.Fprintf(os.Stderr, "⚙️  Chunking %d files with %d workers...\n", len(paths), a.cfg.Concurrency.Workers)
		results, err := a.pipeline.ChunkFiles(ctx, paths)
		if err != nil {
			return err
		}
		failed = countFailed(results)
	}

	if failed > 0 {
		return fmt.Errorf("%d documents failed", failed)
	}
	return nil
}

func countFailed(results []pipeline.FileResult) int {
	n := 0
	for _, r := range results {
		if r.Status == model.StatusFailed {
			n++
		}
	}
	return n
}
