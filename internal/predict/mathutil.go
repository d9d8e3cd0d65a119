package predict

import (
	"math"

	"github.com/shopspring/decimal"
)

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// round rounds half away from zero to places decimals
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// complement returns 1-p rounded to three places so that p + complement(p) == 1
func complement(p float64) float64 {
	return decimal.NewFromInt(1).Sub(decimal.NewFromFloat(p)).Round(3).InexactFloat64()
}

// normalize scales non-negative values so they sum to 1. Returns nil when the sum is 0.
func normalize(values map[string]float64) map[string]float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	if total <= 0 {
		return nil
	}
	out := make(map[string]float64, len(values))
	for k, v := range values {
		out[k] = round(v/total, 3)
	}
	return out
}
