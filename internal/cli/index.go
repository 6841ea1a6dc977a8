package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/notechunk/internal/model"
	"github.com/ppiankov/notechunk/internal/store"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Query the SQLite chunk index",
	Long: `Query the chunk index written when output.sqlite_path is set.

Example:
  notechunk index sources
  notechunk index show atelier.txt
  notechunk index find 3f2a9c0d1b4e5f60`,
}

var indexSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List indexed source files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIndex(func(ctx context.Context, db *store.SQLiteStore) error {
			sources, err := db.Sources(ctx)
			if err != nil {
				return err
			}
			for _, s := range sources {
				fmt.Println(s)
			}
			return nil
		})
	},
}

var indexShowCmd = &cobra.Command{
	Use:   "show <source_file>",
	Short: "Print the chunks of one source file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIndex(func(ctx context.Context, db *store.SQLiteStore) error {
			chunks, err := db.Chunks(ctx, args[0])
			if err != nil {
				return err
			}
			return printRecords(chunks)
		})
	},
}

var indexFindCmd = &cobra.Command{
	Use:   "find <chunk_id>",
	Short: "Print every chunk with the given fingerprint as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIndex(func(ctx context.Context, db *store.SQLiteStore) error {
			chunks, err := db.FindByID(ctx, args[0])
			if err != nil {
				return err
			}
			return printRecords(chunks)
		})
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexSourcesCmd)
	indexCmd.AddCommand(indexShowCmd)
	indexCmd.AddCommand(indexFindCmd)
	indexCmd.PersistentFlags().String("sqlite", "", "SQLite database (default: output.sqlite_path)")
}

func withIndex(fn func(ctx context.Context, db *store.SQLiteStore) error) error {
	_ = viper.BindPFlag("output.sqlite_path", indexCmd.PersistentFlags().Lookup("sqlite"))
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Output.SQLitePath == "" {
		return fmt.Errorf("no chunk index configured (set output.sqlite_path or --sqlite)")
	}
	if _, err := os.Stat(cfg.Output.SQLitePath); err != nil {
		return fmt.Errorf("chunk index: %w", err)
	}

	ctx := context.Background()
	db, err := store.OpenSQLite(ctx, cfg.Output.SQLitePath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return fn(ctx, db)
}

func printRecords(chunks []model.Chunk) error {
	data, err := store.MarshalRecords(model.Records(chunks))
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
