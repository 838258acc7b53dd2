package stats

import (
	"math"
	"testing"

	"github.com/hab-project/reauthstat/internal/model"
)

func obs(missed, reauth int) model.Observation {
	return model.Observation{
		Strategy:    model.StrategySkipExponential,
		KeyParam:    1,
		PC:          1,
		NumReceived: missed * 2,
		NumMissed:   missed,
		NumToReauth: reauth,
	}
}

func censoredObs(missed int) model.Observation {
	o := obs(missed, 0)
	o.Censored = true
	return o
}

func TestAggregateGroupsByKey(t *testing.T) {
	observations := []model.Observation{
		obs(2, 3), obs(1, 5), obs(2, 7), obs(1, 1), obs(1, 3),
	}
	summaries := Aggregate(observations)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(summaries))
	}
	// Emission order follows first-seen keys.
	if summaries[0].Key.NumMissed != 2 || summaries[1].Key.NumMissed != 1 {
		t.Fatalf("unexpected group order: %+v", summaries)
	}
	if summaries[0].Count != 2 || summaries[1].Count != 3 {
		t.Fatalf("unexpected group counts: %+v", summaries)
	}
	if summaries[1].Median != 3 {
		t.Fatalf("expected median 3 for group missed=1, got %v", summaries[1].Median)
	}
	if summaries[1].Mean != 3 {
		t.Fatalf("expected mean 3 for group missed=1, got %v", summaries[1].Mean)
	}
}

func TestAggregateQuantileInterpolation(t *testing.T) {
	observations := []model.Observation{
		obs(1, 1), obs(1, 2), obs(1, 3), obs(1, 4),
	}
	summaries := Aggregate(observations)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 group, got %d", len(summaries))
	}
	s := summaries[0]
	// rank = q*(n-1) with linear interpolation over n=4 sorted values.
	if math.Abs(s.Q25-1.75) > 1e-12 {
		t.Fatalf("expected q25 = 1.75, got %v", s.Q25)
	}
	if math.Abs(s.Median-2.5) > 1e-12 {
		t.Fatalf("expected median = 2.5, got %v", s.Median)
	}
	if math.Abs(s.Q75-3.25) > 1e-12 {
		t.Fatalf("expected q75 = 3.25, got %v", s.Q75)
	}
}

func TestAggregateQuantileOrdering(t *testing.T) {
	valueSets := [][]int{
		{1},
		{5, 5, 5},
		{1, 100},
		{9, 2, 7, 4, 4, 11, 3},
		{0, 0, 0, 1},
	}
	for _, values := range valueSets {
		observations := make([]model.Observation, 0, len(values))
		for _, v := range values {
			observations = append(observations, obs(1, v))
		}
		s := Aggregate(observations)[0]
		if !s.Defined {
			t.Fatalf("expected defined summary for %v", values)
		}
		if s.Q25 > s.Median || s.Median > s.Q75 {
			t.Fatalf("quantile ordering violated for %v: q25=%v median=%v q75=%v", values, s.Q25, s.Median, s.Q75)
		}
	}
}

func TestAggregateMissProb(t *testing.T) {
	cases := []struct {
		name     string
		censored int
		measured int
		want     float64
	}{
		{name: "none missing", censored: 0, measured: 4, want: 0},
		{name: "mixed", censored: 1, measured: 3, want: 0.25},
		{name: "all missing", censored: 5, measured: 0, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var observations []model.Observation
			for i := 0; i < tc.measured; i++ {
				observations = append(observations, obs(1, i+1))
			}
			for i := 0; i < tc.censored; i++ {
				observations = append(observations, censoredObs(1))
			}
			s := Aggregate(observations)[0]
			if s.MissProb != tc.want {
				t.Fatalf("expected miss prob %v, got %v", tc.want, s.MissProb)
			}
			if s.CensoredCount != tc.censored {
				t.Fatalf("expected %d censored, got %d", tc.censored, s.CensoredCount)
			}
		})
	}
}

func TestAggregateAllCensoredGroup(t *testing.T) {
	summaries := Aggregate([]model.Observation{censoredObs(3), censoredObs(3)})
	if len(summaries) != 1 {
		t.Fatalf("expected 1 group, got %d", len(summaries))
	}
	s := summaries[0]
	if s.Defined {
		t.Fatalf("expected undefined statistics for all-censored group")
	}
	if s.MissProb != 1 {
		t.Fatalf("expected miss prob 1, got %v", s.MissProb)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	if summaries := Aggregate(nil); len(summaries) != 0 {
		t.Fatalf("expected no summaries, got %d", len(summaries))
	}
}
