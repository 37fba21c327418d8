// Command chatctl runs the deterministic half of the chat cascade offline.
// Useful to check how a message would be classified without the API, the
// store or the classifier.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/config"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
)

var logger = zap.NewNop()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chatctl",
		Short: "Finnextho chat tooling",
		Long: `chatctl classifies chat messages with the fast-path and context stages,
normalizes amounts, dates and categories, and issues dev tokens for the API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = config.LoadDotEnv(".env")
			level, _ := cmd.Flags().GetString("log-level")
			logger = observability.NewLogger(level)
			return nil
		},
	}
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(detectCmd())
	root.AddCommand(normalizeCmd())
	root.AddCommand(tokenCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	_ = logger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
