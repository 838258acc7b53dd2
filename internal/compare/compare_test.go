package compare

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hab-project/reauthstat/internal/model"
)

const trialsHeader = "key_selection\tkey_lifetime\tPC\tnum_received\tnum_missed\tnum_to_reauth\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func goodTable(rows int) string {
	table := trialsHeader
	for i := 0; i < rows; i++ {
		table += fmt.Sprintf("linear\t1\t1\t2\t1\t%d\n", i+2)
	}
	return table
}

func TestRunPartialFailure(t *testing.T) {
	dir := t.TempDir()
	good1 := writeFile(t, dir, "a.tsv", goodTable(4))
	// Missing num_to_reauth column.
	bad := writeFile(t, dir, "b.tsv", "key_selection\tkey_lifetime\tPC\tnum_received\tnum_missed\nlinear\t1\t1\t2\t1\n")
	good2 := writeFile(t, dir, "c.tsv", goodTable(3))

	specs := []model.ConfigSpec{
		{Label: "one", Strategy: model.StrategyLinear, TrialsPath: good1, PEstimation: model.PFromGroupMean},
		{Label: "two", Strategy: model.StrategyLinear, TrialsPath: bad, PEstimation: model.PFromGroupMean},
		{Label: "three", Strategy: model.StrategyLinear, TrialsPath: good2, PEstimation: model.PFromGroupMean},
	}
	results := Run(context.Background(), specs, Options{})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("expected configurations 1 and 3 to succeed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Fatalf("expected configuration 2 to fail")
	}
	if len(results[0].Empirical) == 0 || len(results[0].Approx) == 0 {
		t.Fatalf("expected summaries for configuration 1: %+v", results[0])
	}
}

func TestRunDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	var specs []model.ConfigSpec
	for i := 0; i < 8; i++ {
		path := writeFile(t, dir, fmt.Sprintf("t%d.tsv", i), goodTable(i+1))
		specs = append(specs, model.ConfigSpec{
			Label:       fmt.Sprintf("config-%d", i),
			Strategy:    model.StrategyExponential,
			TrialsPath:  path,
			PEstimation: model.PFromGroupMean,
		})
	}
	results := Run(context.Background(), specs, Options{Jobs: 4})
	for i, result := range results {
		if result.Label != specs[i].Label {
			t.Fatalf("result %d out of order: got %q", i, result.Label)
		}
		if result.Err != nil {
			t.Fatalf("configuration %d failed: %v", i, result.Err)
		}
	}
}

func TestRunMissingFile(t *testing.T) {
	specs := []model.ConfigSpec{{
		Label:       "gone",
		TrialsPath:  filepath.Join(t.TempDir(), "missing.tsv"),
		PEstimation: model.PFromGroupMean,
	}}
	results := Run(context.Background(), specs, Options{})
	if results[0].Err == nil {
		t.Fatalf("expected error for missing input file")
	}
}

func TestRunBaseRateEstimation(t *testing.T) {
	dir := t.TempDir()
	trials := writeFile(t, dir, "trials.tsv", goodTable(4))
	rates := writeFile(t, dir, "rates.tsv",
		"configuration\tnum_missed\tmean_reauth\nexp\t1\t2\nexp\t2\t4\n")

	specs := []model.ConfigSpec{{
		Label:         "base-rate",
		Strategy:      model.StrategyExponential,
		TrialsPath:    trials,
		BaseRatesPath: rates,
		PEstimation:   model.PFromBaseRate,
	}}
	results := Run(context.Background(), specs, Options{})
	if results[0].Err != nil {
		t.Fatalf("run failed: %v", results[0].Err)
	}
	if len(results[0].Approx) != 2 {
		t.Fatalf("expected 2 approximations from base rates, got %d", len(results[0].Approx))
	}
	if results[0].Approx[0].P != 0.5 {
		t.Fatalf("expected p = 0.5 from mean 2, got %v", results[0].Approx[0].P)
	}
}

func TestRunBaseRateSharedTable(t *testing.T) {
	dir := t.TempDir()
	trials := writeFile(t, dir, "trials.tsv", goodTable(4))
	// Two configurations share one table and one missed count.
	rates := writeFile(t, dir, "rates.tsv",
		"configuration\tnum_missed\tmean_reauth\n"+
			"exp\t1\t2\n"+
			"lin\t1\t4\n"+
			"exp\t2\t8\n")

	specs := []model.ConfigSpec{{
		Label:         "exp",
		Strategy:      model.StrategyExponential,
		TrialsPath:    trials,
		BaseRatesPath: rates,
		PEstimation:   model.PFromBaseRate,
	}}
	results := Run(context.Background(), specs, Options{})
	if results[0].Err != nil {
		t.Fatalf("run failed: %v", results[0].Err)
	}
	if len(results[0].Approx) != 2 {
		t.Fatalf("expected only the labeled rows, got %d approximations", len(results[0].Approx))
	}
	for _, a := range results[0].Approx {
		if a.P != 0.5 && a.P != 0.125 {
			t.Fatalf("approximation from a foreign configuration leaked in: %+v", a)
		}
	}
}

func TestRunAllCensoredGroupOmitsApprox(t *testing.T) {
	dir := t.TempDir()
	table := trialsHeader +
		"linear\t1\t1\t2\t1\t3\n" +
		"linear\t1\t1\t4\t2\t\n" +
		"linear\t1\t1\t4\t2\tNA\n"
	path := writeFile(t, dir, "censored.tsv", table)
	specs := []model.ConfigSpec{{
		Label:       "censored",
		Strategy:    model.StrategyLinear,
		TrialsPath:  path,
		PEstimation: model.PFromGroupMean,
	}}
	results := Run(context.Background(), specs, Options{})
	if results[0].Err != nil {
		t.Fatalf("run failed: %v", results[0].Err)
	}
	if len(results[0].Empirical) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(results[0].Empirical))
	}
	// The all-censored group must be reported by omission, not a zero row.
	if len(results[0].Approx) != 1 {
		t.Fatalf("expected 1 approximation, got %d", len(results[0].Approx))
	}
}
