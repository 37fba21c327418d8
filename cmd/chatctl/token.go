package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/config"
	"github.com/saulomartins80/finnextho-bfa-go/internal/service"
)

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <userID>",
		Short: "Issue an access token for local testing",
		Long: `Sign an access token for the chat API with JWT_SECRET and JWT_ACCESS_TTL
from the environment (or .env). Never point this at production secrets.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			tok, err := service.NewTokens(cfg.JWTSecret, cfg.JWTAccessTTL).Issue(args[0])
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			logger.Info("token issued", zap.String("user_id", args[0]), zap.Duration("ttl", cfg.JWTAccessTTL))
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
}
