package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkTimeout time.Duration

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured LLM provider answers",
	Long: `Check validates the configuration and pings the configured provider.
With provider "none" it only validates the configuration.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 30*time.Second, "timeout for the provider check")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Configuration valid\n")

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	if provider == nil {
		fmt.Fprintf(os.Stderr, "⚠️  LLM disabled, long paragraphs will use sentence grouping\n")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	start := time.Now()
	if err := provider.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s unreachable\n", provider.Name())
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ %s reachable (%v)\n", provider.Name(), time.Since(start).Round(time.Millisecond))
	return nil
}
