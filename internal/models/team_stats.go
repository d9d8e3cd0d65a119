package models

// Record is a wins/losses/ties triple
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// Games returns the number of games in the record
func (r Record) Games() int {
	return r.Wins + r.Losses + r.Ties
}

// WinRate returns wins/games, or fallback when the record is empty
func (r Record) WinRate(fallback float64) float64 {
	games := r.Games()
	if games == 0 {
		return fallback
	}
	return float64(r.Wins) / float64(games)
}

// TeamStats is a team's season-to-date performance as supplied by the stats collaborator.
// Home and away splits may be partial and need not add up to the overall record.
type TeamStats struct {
	TeamID        string   `json:"team_id,omitempty"`
	Wins          int      `json:"wins" validate:"gte=0"`
	Losses        int      `json:"losses" validate:"gte=0"`
	Ties          int      `json:"ties" validate:"gte=0"`
	PointsFor     float64  `json:"points_for" validate:"gte=0"`
	PointsAgainst float64  `json:"points_against" validate:"gte=0"`
	HomeRecord    Record   `json:"home_record"`
	AwayRecord    Record   `json:"away_record"`
	RecentForm    []string `json:"recent_form" validate:"dive,oneof=W L w l"` // most recent last

	StrengthOfSchedule *float64 `json:"strength_of_schedule,omitempty" validate:"omitempty,gte=0,lte=1"`
	AvgMarginOfVictory *float64 `json:"avg_margin_of_victory,omitempty"`
	Consistency        *float64 `json:"consistency,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Games returns the total games played
func (s *TeamStats) Games() int {
	return s.Wins + s.Losses + s.Ties
}

// WinRate returns wins/games (0 with no games)
func (s *TeamStats) WinRate() float64 {
	games := s.Games()
	if games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(games)
}

// PointDiffPerGame returns the average scoring margin per game (0 with no games)
func (s *TeamStats) PointDiffPerGame() float64 {
	games := s.Games()
	if games == 0 {
		return 0
	}
	return (s.PointsFor - s.PointsAgainst) / float64(games)
}

// PointsPerGame returns the average points scored per game (0 with no games)
func (s *TeamStats) PointsPerGame() float64 {
	games := s.Games()
	if games == 0 {
		return 0
	}
	return s.PointsFor / float64(games)
}

// ConsistencyOr returns the consistency score or the fallback when absent
func (s *TeamStats) ConsistencyOr(fallback float64) float64 {
	if s.Consistency == nil {
		return fallback
	}
	return *s.Consistency
}

// StrengthOfScheduleOr returns strength of schedule or the fallback when absent
func (s *TeamStats) StrengthOfScheduleOr(fallback float64) float64 {
	if s.StrengthOfSchedule == nil {
		return fallback
	}
	return *s.StrengthOfSchedule
}

// LastResults returns up to n of the most recent results, oldest first
func (s *TeamStats) LastResults(n int) []string {
	if len(s.RecentForm) <= n {
		return s.RecentForm
	}
	return s.RecentForm[len(s.RecentForm)-n:]
}
