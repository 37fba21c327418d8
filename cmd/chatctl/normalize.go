package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/entity"
)

func normalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Run a single entity normalizer",
		Long:  `Apply one of the entity normalizers used by the chat cascade to free text.`,
	}

	cmd.AddCommand(normalizer("amount", "Extract a monetary amount (\"6 mil\", \"R$ 1.500,50\")", normalizeAmount))
	cmd.AddCommand(normalizer("date", "Resolve a deadline phrase (\"final do ano\") to an ISO date", normalizeDate))
	cmd.AddCommand(normalizer("category", "Infer the transaction category of a description", normalizeCategory))
	cmd.AddCommand(normalizer("goal-category", "Infer the goal category of a goal name", normalizeGoalCategory))
	cmd.AddCommand(normalizer("investment", "Map an investment name to a supported type", normalizeInvestment))
	return cmd
}

func normalizer(use, short string, fn func(text string, now time.Time) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <text>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := fn(strings.Join(args, " "), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func normalizeAmount(text string, _ time.Time) (string, error) {
	amount, ok := entity.ParseAmount(text)
	if !ok {
		return "", fmt.Errorf("no amount found in %q", text)
	}
	return fmt.Sprintf("%s\t%s", amount.StringFixed(2), entity.FormatBRL(amount)), nil
}

func normalizeDate(text string, now time.Time) (string, error) {
	return entity.ResolveDate(text, now), nil
}

func normalizeCategory(text string, _ time.Time) (string, error) {
	return entity.InferCategory(text), nil
}

func normalizeGoalCategory(text string, _ time.Time) (string, error) {
	return entity.InferGoalCategory(text), nil
}

func normalizeInvestment(text string, _ time.Time) (string, error) {
	kind, ok := entity.NormalizeInvestmentType(text)
	if !ok {
		return "", fmt.Errorf("%q is not a supported investment type (valid: %s)", text, strings.Join(entity.InvestmentTypes, ", "))
	}
	return kind, nil
}
