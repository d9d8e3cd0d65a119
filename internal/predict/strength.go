package predict

import (
	"math"

	"github.com/projectapex/apex-api/internal/models"
)

const (
	minStrength = 0.1
	maxStrength = 0.9

	// practical bound on per-game scoring margin
	pointDiffBound = 20.0
)

// StrengthOf scores a team in [0.1, 0.9] using the weights for one sport.
// Win rate, point differential, consistency, home/away balance and form are
// blended by weight; strength of schedule then shifts the blend by
// Schedule*(sos-0.5). A team with no games scores exactly 0.5.
func StrengthOf(stats *models.TeamStats, w StrengthWeights) float64 {
	if stats == nil || stats.Games() == 0 {
		return 0.5
	}

	winRate := stats.WinRate()
	pointDiff := (clamp(stats.PointDiffPerGame(), -pointDiffBound, pointDiffBound) + pointDiffBound) / (2 * pointDiffBound)
	consistency := stats.ConsistencyOr(0.5)
	homeAway := 1 - math.Abs(stats.HomeRecord.WinRate(0.5)-stats.AwayRecord.WinRate(0.5))
	form := RecencyWeightedForm(stats.RecentForm)
	scheduleOffset := stats.StrengthOfScheduleOr(0.5) - 0.5

	blendWeight := w.WinRate + w.PointDiff + w.Consistency + w.HomeAway + w.Form
	if blendWeight <= 0 {
		return 0.5
	}

	blend := (w.WinRate*winRate +
		w.PointDiff*pointDiff +
		w.Consistency*consistency +
		w.HomeAway*homeAway +
		w.Form*form) / blendWeight

	return clamp(blend+w.Schedule*scheduleOffset, minStrength, maxStrength)
}
