package report

import (
	"github.com/hab-project/reauthstat/internal/model"
	"github.com/hab-project/reauthstat/internal/stats"
)

// Point is one (x, y) pair of a plottable series; x is the missed-message
// count.
type Point struct {
	X int
	Y float64
}

// SeriesSet is the hand-off contract for the external rendering
// collaborator: named ordered series per configuration plus the numeric
// range of the secondary probability axis.
type SeriesSet struct {
	Label        string
	Strategy     model.Strategy
	Series       map[string][]Point
	ProbAxisMax  float64
	ProbAxisTick []float64
}

// Series names emitted by BuildSeries.
const (
	SeriesMedian       = "median"
	SeriesQ25          = "q25"
	SeriesQ75          = "q75"
	SeriesMedianApprox = "median_approx"
	SeriesQ25Approx    = "q25_approx"
	SeriesQ75Approx    = "q75_approx"
	SeriesMissProb     = "miss_prob"
)

const probAxisTicks = 5

// BuildSeries flattens one comparison result into plottable series. The
// miss-probability series is rescaled onto the count axis; it is omitted
// entirely when the result has no defined summaries to derive a reference
// maximum from.
func BuildSeries(result model.ComparisonResult) SeriesSet {
	set := SeriesSet{
		Label:    result.Label,
		Strategy: result.Strategy,
		Series:   map[string][]Point{},
	}
	for _, s := range result.Empirical {
		if !s.Defined {
			continue
		}
		x := s.Key.NumMissed
		set.Series[SeriesMedian] = append(set.Series[SeriesMedian], Point{X: x, Y: s.Median})
		set.Series[SeriesQ25] = append(set.Series[SeriesQ25], Point{X: x, Y: s.Q25})
		set.Series[SeriesQ75] = append(set.Series[SeriesQ75], Point{X: x, Y: s.Q75})
	}
	for _, a := range result.Approx {
		x := a.Key.NumMissed
		set.Series[SeriesMedianApprox] = append(set.Series[SeriesMedianApprox], Point{X: x, Y: float64(a.Median)})
		set.Series[SeriesQ25Approx] = append(set.Series[SeriesQ25Approx], Point{X: x, Y: float64(a.Q25)})
		set.Series[SeriesQ75Approx] = append(set.Series[SeriesQ75Approx], Point{X: x, Y: float64(a.Q75)})
	}
	if refMax, ok := stats.ReferenceMax(result.Empirical); ok {
		set.ProbAxisMax = refMax
		set.ProbAxisTick = stats.ProbTicks(refMax, probAxisTicks)
		for _, s := range result.Empirical {
			set.Series[SeriesMissProb] = append(set.Series[SeriesMissProb], Point{
				X: s.Key.NumMissed,
				Y: stats.RescaleProbability(s.MissProb, refMax),
			})
		}
	}
	return set
}
