package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/projectapex/apex-api/internal/app"
	"github.com/projectapex/apex-api/internal/logic"
	"github.com/projectapex/apex-api/internal/models"
)

// parseOutcome reads a flag value the way the API reads a JSON string:
// numbers are numeric outcomes, anything else is a label
func parseOutcome(s string) (models.Outcome, error) {
	var o models.Outcome
	if s == "" {
		return o, nil
	}
	err := json.Unmarshal([]byte(strconv.Quote(s)), &o)
	return o, err
}

func evaluateCmd() *cobra.Command {
	var req logic.EvaluateRequest
	var actual, predicted string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score one prediction against its realized outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Actual, err = parseOutcome(actual); err != nil {
				return fmt.Errorf("--actual: %w", err)
			}
			if req.Predicted, err = parseOutcome(predicted); err != nil {
				return fmt.Errorf("--predicted: %w", err)
			}
			return runWithApp(func(ctx context.Context, a *app.App) error {
				ev, err := a.Tracker.Evaluate(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), ev)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.PredictionID, "prediction-id", "", "Prediction ID")
	f.StringVar(&actual, "actual", "", "Actual outcome (number or label)")
	f.StringVar(&predicted, "predicted", "", "Predicted outcome (number or label)")
	f.Float64Var(&req.Probability, "probability", 0.5, "Predicted probability")
	f.StringVar(&req.Sport, "sport", "", "Sport")
	f.StringVar(&req.League, "league", "", "League")
	f.StringVar(&req.ModelName, "model", "", "Model name")
	for _, name := range []string{"prediction-id", "actual", "predicted", "sport", "model"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func resolveCmd() *cobra.Command {
	var gameID string
	var homeScore, awayScore float64
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Evaluate every stored prediction for a finished game",
		RunE: func(cmd *cobra.Command, args []string) error {
			if homeScore < 0 || awayScore < 0 {
				return fmt.Errorf("scores must be non-negative")
			}
			return runWithApp(func(ctx context.Context, a *app.App) error {
				evs, err := a.Tracker.ResolveGame(ctx, gameID, homeScore, awayScore)
				if err != nil {
					return err
				}
				logger.Sugar().Infow("Game resolved", "game_id", gameID, "evaluations", len(evs))
				return printJSON(cmd.OutOrStdout(), evs)
			})
		},
	}
	cmd.Flags().StringVar(&gameID, "game-id", "", "Game ID")
	cmd.Flags().Float64Var(&homeScore, "home", 0, "Home final score")
	cmd.Flags().Float64Var(&awayScore, "away", 0, "Away final score")
	for _, name := range []string{"game-id", "home", "away"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func analyzeCmd() *cobra.Command {
	var sport, league, model, timeRange string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report model performance for a sport",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := logic.ParseTimeRange(timeRange)
			if err != nil {
				return err
			}
			return runWithApp(func(ctx context.Context, a *app.App) error {
				analysis, err := a.Analyzer.Analyze(ctx, sport, league, model, tr)
				if err != nil {
					return err
				}
				if analysis == nil {
					return fmt.Errorf("no evaluations for %s in range %s", sport, tr)
				}
				return printJSON(cmd.OutOrStdout(), analysis)
			})
		},
	}
	cmd.Flags().StringVar(&sport, "sport", "", "Sport")
	cmd.Flags().StringVar(&league, "league", "", "League filter")
	cmd.Flags().StringVar(&model, "model", "", "Model filter")
	cmd.Flags().StringVar(&timeRange, "range", "all", "Time range (week, month, season, all)")
	_ = cmd.MarkFlagRequired("sport")
	return cmd
}

func calibrateCmd() *cobra.Command {
	var sport, model string
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Report probability calibration for a model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(func(ctx context.Context, a *app.App) error {
				report, err := a.Analyzer.CalibrationAnalysis(ctx, sport, model)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().StringVar(&sport, "sport", "", "Sport")
	cmd.Flags().StringVar(&model, "model", "", "Model name")
	_ = cmd.MarkFlagRequired("sport")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func monitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Run one monitoring pass and publish its alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(func(ctx context.Context, a *app.App) error {
				report, err := a.Monitor.Run(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}
