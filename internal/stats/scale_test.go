package stats

import (
	"math"
	"testing"

	"github.com/hab-project/reauthstat/internal/model"
)

func TestRescaleProbabilityRoundTrip(t *testing.T) {
	for _, refMax := range []float64{0.5, 1, 37.2, 1e6} {
		for _, p := range []float64{0, 0.25, 0.5, 0.99, 1} {
			scaled := RescaleProbability(p, refMax)
			if got := scaled / refMax; math.Abs(got-p) > 1e-12 {
				t.Fatalf("round trip failed for p=%v refMax=%v: got %v", p, refMax, got)
			}
		}
	}
}

func TestReferenceMax(t *testing.T) {
	summaries := []model.GroupSummary{
		{Defined: true, Mean: 3},
		{Defined: false, Mean: 100}, // undefined mean must be ignored
		{Defined: true, Mean: 7},
	}
	refMax, ok := ReferenceMax(summaries)
	if !ok {
		t.Fatalf("expected a reference max")
	}
	if refMax != 7 {
		t.Fatalf("expected reference max 7, got %v", refMax)
	}
}

func TestReferenceMaxAllUndefined(t *testing.T) {
	summaries := []model.GroupSummary{{Defined: false}, {Defined: false}}
	if _, ok := ReferenceMax(summaries); ok {
		t.Fatalf("expected no reference max for all-undefined summaries")
	}
}

func TestProbTicks(t *testing.T) {
	ticks := ProbTicks(10, 4)
	want := []float64{0, 2.5, 5, 7.5, 10}
	if len(ticks) != len(want) {
		t.Fatalf("expected %d ticks, got %d", len(want), len(ticks))
	}
	for i := range want {
		if math.Abs(ticks[i]-want[i]) > 1e-12 {
			t.Fatalf("tick %d: expected %v, got %v", i, want[i], ticks[i])
		}
	}
	if ProbTicks(0, 4) != nil {
		t.Fatalf("expected nil ticks for zero reference max")
	}
	if ProbTicks(10, 0) != nil {
		t.Fatalf("expected nil ticks for zero count")
	}
}
