package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/projectapex/apex-api/internal/app"
	"github.com/projectapex/apex-api/internal/logic"
	"github.com/projectapex/apex-api/internal/models"
	"github.com/projectapex/apex-api/internal/predict"
)

// matchupFile is the input of the offline predict command
type matchupFile struct {
	Home    *models.TeamStats  `json:"home_stats"`
	Away    *models.TeamStats  `json:"away_stats"`
	Context models.GameContext `json:"context"`
}

func readMatchup(path string) (*matchupFile, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
		defer f.Close()
	}

	var m matchupFile
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if m.Home == nil || m.Away == nil {
		return nil, fmt.Errorf("%s: home_stats and away_stats are required", path)
	}
	return &m, nil
}

func loadEngine(weightsFile string) (*predict.Engine, error) {
	if weightsFile == "" {
		return predict.NewEngine(predict.DefaultWeights()), nil
	}
	w, err := predict.LoadWeightsFile(weightsFile)
	if err != nil {
		return nil, err
	}
	return predict.NewEngine(w), nil
}

// predictCmd runs the models against stats from a file, without any store
func predictCmd() *cobra.Command {
	var file, model, sport, weightsFile string
	var playoffs bool
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a matchup from a JSON file of team stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readMatchup(file)
			if err != nil {
				return err
			}
			if sport != "" {
				m.Context.Sport = sport
			}
			if playoffs {
				m.Context.IsPlayoffs = true
			}
			if m.Context.Sport == "" {
				return fmt.Errorf("sport is required (flag or context.sport)")
			}

			engine, err := loadEngine(weightsFile)
			if err != nil {
				return err
			}
			pred, err := engine.PredictWith(model, m.Home, m.Away, &m.Context)
			if err != nil {
				return err
			}
			logger.Sugar().Debugw("Prediction computed", "model", pred.Model, "weights", engine.Version())
			return printJSON(cmd.OutOrStdout(), pred)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Matchup JSON file, - for stdin")
	cmd.Flags().StringVar(&model, "model", "", "Model name (linear, rating, strength); empty for the ensemble")
	cmd.Flags().StringVar(&sport, "sport", "", "Override context.sport")
	cmd.Flags().StringVar(&weightsFile, "weights", os.Getenv("WEIGHTS_FILE"), "Model weights YAML")
	cmd.Flags().BoolVar(&playoffs, "playoffs", false, "Mark the game as a playoff game")
	return cmd
}

func weightsCmd() *cobra.Command {
	var weightsFile string
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Validate a weights file and print its sports and aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(weightsFile)
			if err != nil {
				return err
			}
			w := engine.Weights()
			sports := make([]string, 0, len(w.Sports))
			for name := range w.Sports {
				sports = append(sports, name)
			}
			sort.Strings(sports)
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"version": engine.Version(),
				"sports":  sports,
				"aliases": w.Aliases,
				"default": predict.DefaultSport,
			})
		},
	}
	cmd.Flags().StringVar(&weightsFile, "file", os.Getenv("WEIGHTS_FILE"), "Weights YAML; empty for the built-in weights")
	return cmd
}

func predictGameCmd() *cobra.Command {
	var req logic.PredictGameRequest
	var asOf string
	cmd := &cobra.Command{
		Use:   "predict-game",
		Short: "Predict a scheduled game from stored results and persist the rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asOf != "" {
				t, err := time.Parse("2006-01-02", asOf)
				if err != nil {
					return fmt.Errorf("--as-of: %w", err)
				}
				req.AsOf = t
			}
			req.Context.Sport = strings.ToLower(req.Context.Sport)
			return runWithApp(func(ctx context.Context, a *app.App) error {
				gp, err := a.Prediction.PredictGame(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), gp)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.GameID, "game-id", "", "Game ID; predictions are stored only when set")
	f.StringVar(&req.HomeTeamID, "home", "", "Home team ID")
	f.StringVar(&req.AwayTeamID, "away", "", "Away team ID")
	f.StringVar(&req.Context.Sport, "sport", "", "Sport")
	f.StringVar(&req.League, "league", "", "League")
	f.StringVar(&req.Season, "season", "", "Season label")
	f.StringVar(&req.GameType, "game-type", "regular", "Game type")
	f.StringVar(&req.Model, "model", "", "Model name; empty for the ensemble")
	f.IntVar(&req.Context.RestDays, "rest-days", 0, "Home rest days")
	f.BoolVar(&req.Context.IsPlayoffs, "playoffs", false, "Playoff game")
	f.StringVar(&asOf, "as-of", "", "Only use games before this date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("home")
	_ = cmd.MarkFlagRequired("away")
	_ = cmd.MarkFlagRequired("sport")
	return cmd
}
