package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/projectapex/apex-api/internal/models"
)

const (
	recentFormLength = 10
	marginSpread     = 20.0
)

// gameRow is one completed game as read from the games table
type gameRow struct {
	Season     string
	HomeTeamID string
	AwayTeamID string
	HomeScore  float64
	AwayScore  float64
	PlayedAt   time.Time
}

// TeamStatsRepository derives season-to-date team statistics from completed games
type TeamStatsRepository struct {
	pg    PgPool
	guard *Guard
}

func NewTeamStatsRepository(pg PgPool, guard *Guard) *TeamStatsRepository {
	return &TeamStatsRepository{pg: pg, guard: guard}
}

// FetchTeamStats builds stats from the team's latest season, using only games
// completed before asOf. A zero asOf means now.
func (r *TeamStatsRepository) FetchTeamStats(ctx context.Context, teamID string, asOf time.Time) (*models.TeamStats, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	var games []gameRow
	err := r.guard.Do(ctx, "team_games", func(ctx context.Context) error {
		rows, err := r.pg.Query(ctx, `
			SELECT season, home_team_id, away_team_id, home_score, away_score, played_at
			FROM games
			WHERE (home_team_id = $1 OR away_team_id = $1)
			  AND status = 'completed'
			  AND played_at < $2
			  AND season = (
				SELECT season FROM games
				WHERE (home_team_id = $1 OR away_team_id = $1)
				  AND status = 'completed' AND played_at < $2
				ORDER BY played_at DESC
				LIMIT 1
			  )
			ORDER BY played_at ASC
		`, teamID, asOf)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var g gameRow
			if err := rows.Scan(&g.Season, &g.HomeTeamID, &g.AwayTeamID, &g.HomeScore, &g.AwayScore, &g.PlayedAt); err != nil {
				return fmt.Errorf("scan game: %w", err)
			}
			games = append(games, g)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", teamID, err)
	}
	if len(games) == 0 {
		return &models.TeamStats{TeamID: teamID}, nil
	}

	oppRates, err := r.opponentWinRates(ctx, teamID, games, asOf)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", teamID, err)
	}
	return buildTeamStats(teamID, games, oppRates), nil
}

func (r *TeamStatsRepository) opponentWinRates(ctx context.Context, teamID string, games []gameRow, asOf time.Time) (map[string]float64, error) {
	seen := make(map[string]struct{})
	var opponents []string
	for _, g := range games {
		opp := opponentOf(teamID, g)
		if _, ok := seen[opp]; ok {
			continue
		}
		seen[opp] = struct{}{}
		opponents = append(opponents, opp)
	}

	rates := make(map[string]float64, len(opponents))
	err := r.guard.Do(ctx, "opponent_records", func(ctx context.Context) error {
		rows, err := r.pg.Query(ctx, `
			WITH results AS (
				SELECT home_team_id AS team_id, (home_score > away_score) AS won
				FROM games
				WHERE season = $2 AND status = 'completed' AND played_at < $3
				  AND home_team_id = ANY($1::text[])
				UNION ALL
				SELECT away_team_id AS team_id, (away_score > home_score) AS won
				FROM games
				WHERE season = $2 AND status = 'completed' AND played_at < $3
				  AND away_team_id = ANY($1::text[])
			)
			SELECT team_id, AVG(CASE WHEN won THEN 1.0 ELSE 0.0 END)::float8
			FROM results
			GROUP BY team_id
		`, opponents, games[0].Season, asOf)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			var rate float64
			if err := rows.Scan(&id, &rate); err != nil {
				return fmt.Errorf("scan opponent record: %w", err)
			}
			rates[id] = rate
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func opponentOf(teamID string, g gameRow) string {
	if g.HomeTeamID == teamID {
		return g.AwayTeamID
	}
	return g.HomeTeamID
}

// buildTeamStats folds a team's games, oldest first, into TeamStats.
// Ties count toward the record but are left out of the recent form.
func buildTeamStats(teamID string, games []gameRow, oppWinRates map[string]float64) *models.TeamStats {
	s := &models.TeamStats{TeamID: teamID}
	if len(games) == 0 {
		return s
	}

	var margins, winMargins, oppRates []float64
	var form []string
	for _, g := range games {
		home := g.HomeTeamID == teamID
		scored, allowed := g.AwayScore, g.HomeScore
		split := &s.AwayRecord
		if home {
			scored, allowed = g.HomeScore, g.AwayScore
			split = &s.HomeRecord
		}

		s.PointsFor += scored
		s.PointsAgainst += allowed
		margin := scored - allowed
		margins = append(margins, margin)

		switch {
		case margin > 0:
			s.Wins++
			split.Wins++
			winMargins = append(winMargins, margin)
			form = append(form, "W")
		case margin < 0:
			s.Losses++
			split.Losses++
			form = append(form, "L")
		default:
			s.Ties++
			split.Ties++
		}

		if rate, ok := oppWinRates[opponentOf(teamID, g)]; ok {
			oppRates = append(oppRates, rate)
		}
	}

	if len(form) > recentFormLength {
		form = form[len(form)-recentFormLength:]
	}
	s.RecentForm = form

	if len(margins) >= 2 {
		sd := math.Sqrt(stat.PopVariance(margins, nil))
		c := 1 - math.Min(1, sd/marginSpread)
		s.Consistency = &c
	}
	if len(winMargins) > 0 {
		m := stat.Mean(winMargins, nil)
		s.AvgMarginOfVictory = &m
	}
	if len(oppRates) > 0 {
		sos := stat.Mean(oppRates, nil)
		s.StrengthOfSchedule = &sos
	}
	return s
}
