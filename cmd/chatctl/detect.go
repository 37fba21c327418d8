package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/cascade"
	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/chat/matcher"
	chatservice "github.com/saulomartins80/finnextho-bfa-go/internal/chat/service"
	"github.com/saulomartins80/finnextho-bfa-go/internal/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/observability"
)

// detection is what `chatctl detect` prints.
type detection struct {
	Stage    string                     `json:"stage"`
	Decision string                     `json:"decision"`
	Missing  []string                   `json:"missingFields,omitempty"`
	Action   *chatdomain.DetectedAction `json:"action"`
}

func detectCmd() *cobra.Command {
	var (
		name    string
		plan    string
		history []string
		today   string
	)

	cmd := &cobra.Command{
		Use:   "detect <message>",
		Short: "Classify a message with the deterministic stages",
		Long: `Run the fast-path and context stages over a message and print the detected
action plus what the confidence gate would do with it.

History turns are given as "user:<text>" or "bot:<text>", oldest first.`,
		Example: `  chatctl detect "gastei 100 reais no mercado"
  chatctl detect "o valor foi 50 reais" --history "user:gastei no mercado" --history "bot:Qual foi o valor?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now
			if today != "" {
				day, err := time.Parse("2006-01-02", today)
				if err != nil {
					return fmt.Errorf("invalid --today %q: %w", today, err)
				}
				now = func() time.Time { return day }
			}
			turns, err := parseHistory(history)
			if err != nil {
				return err
			}

			in := &cascade.Input{
				UserID:   "chatctl",
				Message:  strings.Join(args, " "),
				Snapshot: &domain.UserSnapshot{Name: name, SubscriptionPlan: plan},
				History:  turns,
			}
			return writeDetection(cmd.OutOrStdout(), detect(cmd, in, now))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "user name for the snapshot")
	cmd.Flags().StringVar(&plan, "plan", "free", "subscription plan for the snapshot")
	cmd.Flags().StringArrayVar(&history, "history", nil, "previous turn as sender:text (repeatable)")
	cmd.Flags().StringVar(&today, "today", "", "pin the current date (YYYY-MM-DD)")
	return cmd
}

func detect(cmd *cobra.Command, in *cascade.Input, now func() time.Time) *detection {
	pipeline := cascade.NewPipeline(
		nil,
		[]cascade.Stage{
			cascade.FastPathStage(matcher.NewFastPath(now)),
			cascade.ContextStage(matcher.NewContextMatcher(now)),
		},
		nil,
		observability.NewMetrics(),
		logger,
	)

	res := pipeline.Detect(cmd.Context(), in)
	logger.Debug("message classified", zap.String("stage", res.Stage), zap.String("type", string(res.Action.Type)))

	out := &detection{
		Stage:    res.Stage,
		Decision: gateDecision(res.Action),
		Action:   res.Action,
	}
	if res.Action.Type.Executable() {
		out.Missing = chatdomain.MissingFields(res.Action.Payload)
	}
	return out
}

// gateDecision names what the API would do with the action.
func gateDecision(a *chatdomain.DetectedAction) string {
	switch {
	case a.Confidence > chatservice.ExecuteThreshold && a.Type != chatdomain.ActionUnknown:
		return chatservice.OutcomeExecuted
	case a.Confidence > chatservice.ConfirmThreshold && a.Type != chatdomain.ActionUnknown:
		return chatservice.OutcomeConfirmation
	case a.Confidence > chatservice.ConfirmThreshold && a.Response != "":
		return chatservice.OutcomeCanned
	default:
		return chatservice.OutcomeConversation
	}
}

func parseHistory(raw []string) ([]chatdomain.ConversationTurn, error) {
	turns := make([]chatdomain.ConversationTurn, 0, len(raw))
	for _, h := range raw {
		sender, content, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --history %q: want sender:text", h)
		}
		switch s := chatdomain.Sender(strings.ToLower(strings.TrimSpace(sender))); s {
		case chatdomain.SenderUser, chatdomain.SenderBot:
			turns = append(turns, chatdomain.ConversationTurn{Sender: s, Content: strings.TrimSpace(content)})
		default:
			return nil, fmt.Errorf("invalid --history sender %q: want user or bot", sender)
		}
	}
	return turns, nil
}

func writeDetection(w io.Writer, d *detection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}
