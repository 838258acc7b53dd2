package stats

import "github.com/hab-project/reauthstat/internal/model"

// RescaleProbability maps a 0..1 probability onto the count-valued axis so
// both series share one numeric range. The secondary axis re-labels ticks
// as count/refMax.
func RescaleProbability(p, refMax float64) float64 {
	return p * refMax
}

// ReferenceMax returns the largest empirical mean across the defined
// summaries of one comparison group. ok is false when no summary is
// defined; callers must not rescale against such a group.
func ReferenceMax(summaries []model.GroupSummary) (refMax float64, ok bool) {
	for _, s := range summaries {
		if !s.Defined {
			continue
		}
		if !ok || s.Mean > refMax {
			refMax = s.Mean
			ok = true
		}
	}
	return refMax, ok
}

// ProbTicks returns n+1 evenly spaced secondary-axis tick values from 0 to
// refMax, labeled 0..1 when divided back by refMax. Used by the rendering
// hand-off.
func ProbTicks(refMax float64, n int) []float64 {
	if n <= 0 || refMax <= 0 {
		return nil
	}
	ticks := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		ticks[i] = refMax * float64(i) / float64(n)
	}
	return ticks
}
