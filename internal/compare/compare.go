package compare

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/hab-project/reauthstat/internal/model"
	"github.com/hab-project/reauthstat/internal/stats"
	"github.com/hab-project/reauthstat/internal/tsv"
)

// Options tune a batch run.
type Options struct {
	// Jobs caps concurrent configurations. 0 or 1 runs sequentially.
	Jobs int
}

// Run processes every configuration independently and returns one result
// per spec, in spec order regardless of completion order. A configuration
// that fails to load records its error in its result slot; it never aborts
// the others.
func Run(ctx context.Context, specs []model.ConfigSpec, opts Options) []model.ComparisonResult {
	results := make([]model.ComparisonResult, len(specs))
	if len(specs) == 0 {
		return results
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = model.ComparisonResult{Label: spec.Label, Strategy: spec.Strategy, Err: err}
				return nil
			}
			results[i] = runOne(spec)
			return nil
		})
	}
	// Workers report failures through their result slot, never through the
	// group error.
	_ = g.Wait()
	return results
}

func runOne(spec model.ConfigSpec) model.ComparisonResult {
	result := model.ComparisonResult{Label: spec.Label, Strategy: spec.Strategy}

	observations, err := loadObservations(spec.TrialsPath, spec.Strategy)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", spec.TrialsPath, err)
		return result
	}
	result.Empirical = stats.Aggregate(observations)

	switch spec.PEstimation {
	case model.PFromBaseRate:
		rates, err := loadBaseRates(spec.BaseRatesPath)
		if err != nil {
			result.Err = fmt.Errorf("%s: %w", spec.BaseRatesPath, err)
			return result
		}
		result.Approx = approximateBaseRates(rates, spec)
	default:
		result.Approx = approximateGroups(result.Empirical)
	}

	if refMax, ok := stats.ReferenceMax(result.Empirical); ok {
		result.ProbScaleMax = refMax
	}
	return result
}

// approximateGroups collects the approximations that are defined; fully
// censored groups and degenerate means are reported by omission, not by a
// zero row.
func approximateGroups(summaries []model.GroupSummary) []model.ApproxSummary {
	var approx []model.ApproxSummary
	for _, s := range summaries {
		a, err := stats.ApproximateGroup(s)
		if errors.Is(err, stats.ErrInvalidMean) {
			continue
		}
		approx = append(approx, a)
	}
	return approx
}

// approximateBaseRates applies only the rows naming this configuration; a
// shared table can carry several configurations per missed count. A table
// with no row naming the label is treated as dedicated to it.
func approximateBaseRates(rates []model.BaseRate, spec model.ConfigSpec) []model.ApproxSummary {
	var selected []model.BaseRate
	for _, rate := range rates {
		if rate.Configuration == spec.Label {
			selected = append(selected, rate)
		}
	}
	if len(selected) == 0 {
		selected = rates
	}
	var approx []model.ApproxSummary
	for _, rate := range selected {
		a, err := stats.ApproximateBaseRate(rate, spec.Strategy)
		if err != nil {
			continue
		}
		approx = append(approx, a)
	}
	return approx
}

func loadObservations(path string, strategy model.Strategy) ([]model.Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only table.
			_ = cerr
		}
	}()
	observations, err := tsv.ReadObservations(file)
	if err != nil {
		return nil, err
	}
	// The spec label wins over embedded column values when set, so one
	// table reused across strategy variants still labels correctly.
	if strategy != "" {
		for i := range observations {
			observations[i].Strategy = strategy
		}
	}
	return observations, nil
}

func loadBaseRates(path string) ([]model.BaseRate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only table.
			_ = cerr
		}
	}()
	return tsv.ReadBaseRates(file)
}
