// Package stats contains the aggregation and approximation calculations.
package stats

import (
	"sort"

	"github.com/hab-project/reauthstat/internal/model"
)

// Aggregate partitions observations by group key and computes empirical
// statistics per group. Emission order is the insertion order of each
// first-seen key. Quantiles and the mean cover only non-censored trials;
// the miss probability denominator is the full group count.
func Aggregate(observations []model.Observation) []model.GroupSummary {
	type group struct {
		values   []float64
		censored int
	}
	groups := make(map[model.GroupKey]*group)
	var order []model.GroupKey

	for _, obs := range observations {
		key := obs.Key()
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		if obs.Censored {
			g.censored++
		} else {
			g.values = append(g.values, float64(obs.NumToReauth))
		}
	}

	summaries := make([]model.GroupSummary, 0, len(order))
	for _, key := range order {
		g := groups[key]
		total := len(g.values) + g.censored
		summary := model.GroupSummary{
			Key:           key,
			Count:         total,
			CensoredCount: g.censored,
			MissProb:      float64(g.censored) / float64(total),
		}
		if len(g.values) > 0 {
			sorted := append([]float64(nil), g.values...)
			sort.Float64s(sorted)
			summary.Defined = true
			summary.Mean = mean(sorted)
			summary.Q25 = quantile(sorted, 0.25)
			summary.Median = quantile(sorted, 0.5)
			summary.Q75 = quantile(sorted, 0.75)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile computes the inclusive linear-interpolation quantile: rank =
// q*(n-1), interpolated between the neighboring order statistics. Input
// must be sorted and non-empty.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := q * float64(n-1)
	lo := int(rank)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
