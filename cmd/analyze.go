package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/aggregator"
	"github.com/pable/go-goalie-metrics/internal/model"
)

const analyzeSystemPrompt = `You are an NHL goaltending analyst. You are given structured data from a
shot-location tool and a question about one goalie's season.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise. Small samples (under ~50 shots on a side) deserve a caveat.

Glossary:
- left/right: geometric half of the net. Quadrants 1 and 3 of the rink coordinate
  system are left, 2 and 4 are right.
- glove/stick: the left/right sides mapped through the goalie's catching hand.
- save_pct: (shots - goals) / shots * 100 over shots, blocked shots and goals with
  coordinates. null means no shots were classified to that side.
- weaker_side: side with the strictly lower save_pct; null when undetermined.
- handedness_assumed: catching hand unknown, labels assume a right-catching goalie.
- unclassified: events without coordinates (games before tracking).
- missed: missed shots, never classified.`

var (
	analyzeModel  string
	analyzeAPIKey string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <goalie-id> <season> <question>",
	Short: "AI-grounded answer about a goalie's side analysis (requires ANTHROPIC_API_KEY)",
	Args:  cobra.ExactArgs(3),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	season, err := model.ParseSeason(args[1])
	if err != nil {
		return err
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := aggregator.AnalyzeSides(db, args[0], season)
	if errors.Is(err, aggregator.ErrNoData) {
		return fmt.Errorf("no events for goalie %s in %s", args[0], model.FormatSeason(season))
	}
	if err != nil {
		return err
	}

	contextJSON, err := buildSideContext(a)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	modelID := cfg.AIModel
	if analyzeModel != "" {
		modelID = analyzeModel
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, modelID, contextJSON, args[2])
}

// buildSideContext serialises a side analysis into compact JSON.
func buildSideContext(a *model.SideAnalysis) (string, error) {
	side := func(r model.SideRecord) map[string]any {
		out := map[string]any{
			"label": r.Label.String(),
			"shots": r.Shots,
			"goals": r.Goals,
		}
		if pct, ok := r.SavePercentage(); ok {
			out["save_pct"] = round2(pct)
		} else {
			out["save_pct"] = nil
		}
		return out
	}

	var weaker any
	if label, ok := a.WeakerLabel(); ok {
		weaker = fmt.Sprintf("%s (%s)", a.Weaker, label)
	}
	hand := a.Handedness.String()
	if hand == "" {
		hand = "unknown"
	}

	doc := map[string]any{
		"goalie":             a.Name,
		"goalie_id":          a.GoalieID,
		"season":             model.FormatSeason(a.Season),
		"catches":            hand,
		"handedness_assumed": a.HandednessAssumed,
		"left":               side(a.Left),
		"right":              side(a.Right),
		"weaker_side":        weaker,
		"events":             a.Total,
		"unclassified":       a.Unclassified,
		"missed":             a.Missed,
	}
	b, err := json.Marshal(doc)
	return string(b), err
}

// round2 rounds a float64 to 2 decimal places.
func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)
	logger.Debug("analyze request", "model", modelID, "context_bytes", len(dataJSON))

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed: check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
