package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/hab-project/reauthstat/internal/model"
)

// ErrInvalidMean is returned when the approximator is handed a mean that
// cannot be interpreted as a reciprocal success probability.
var ErrInvalidMean = errors.New("mean must be positive and defined")

// GeomQuantiles holds closed-form quantiles of a geometric distribution.
type GeomQuantiles struct {
	P      float64
	Median int
	Q25    int
	Q75    int
}

// Approximate treats the mean time-to-reauthenticate as 1/p for a geometric
// distribution and returns its closed-form quantiles: solving
// P(X > k) = (1-p)^k = 1-q gives k = ln(1-q)/ln(1-p), rounded up to the
// next attainable trial count.
//
// mean == 1 means p == 1: every quantile is exactly 0, a valid result.
// mean <= 0 fails with ErrInvalidMean. mean < 1 would put p above 1 and
// fails the same way.
func Approximate(mean float64) (GeomQuantiles, error) {
	if math.IsNaN(mean) || math.IsInf(mean, 0) || mean <= 0 {
		return GeomQuantiles{}, fmt.Errorf("approximate: mean %v: %w", mean, ErrInvalidMean)
	}
	p := 1 / mean
	if p > 1 {
		return GeomQuantiles{}, fmt.Errorf("approximate: mean %v below 1: %w", mean, ErrInvalidMean)
	}
	return GeomQuantiles{
		P:      p,
		Q25:    geomQuantile(p, 0.25),
		Median: geomQuantile(p, 0.5),
		Q75:    geomQuantile(p, 0.75),
	}, nil
}

// ApproximateGroup derives the approximation from a group's empirical mean.
// Groups with no defined statistics cannot be approximated.
func ApproximateGroup(summary model.GroupSummary) (model.ApproxSummary, error) {
	if !summary.Defined {
		return model.ApproxSummary{}, fmt.Errorf("approximate group %+v: undefined mean: %w", summary.Key, ErrInvalidMean)
	}
	gq, err := Approximate(summary.Mean)
	if err != nil {
		return model.ApproxSummary{}, err
	}
	return model.ApproxSummary{
		Key:    summary.Key,
		P:      gq.P,
		Median: gq.Median,
		Q25:    gq.Q25,
		Q75:    gq.Q75,
	}, nil
}

// ApproximateBaseRate derives the approximation from a declared base rate,
// attaching the originating strategy so results group alongside the
// empirical series.
func ApproximateBaseRate(rate model.BaseRate, strategy model.Strategy) (model.ApproxSummary, error) {
	gq, err := Approximate(rate.MeanReauth)
	if err != nil {
		return model.ApproxSummary{}, err
	}
	return model.ApproxSummary{
		Key:    model.GroupKey{Strategy: strategy, NumMissed: rate.NumMissed},
		P:      gq.P,
		Median: gq.Median,
		Q25:    gq.Q25,
		Q75:    gq.Q75,
	}, nil
}

func geomQuantile(p, q float64) int {
	if p >= 1 {
		return 0
	}
	// ln(1-p) < 0 here since 0 < p < 1, so the ratio is non-negative.
	k := math.Log(1-q) / math.Log(1-p)
	return int(math.Ceil(k))
}
