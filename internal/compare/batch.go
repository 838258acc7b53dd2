// Package compare orchestrates comparison batches over configurations.
package compare

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/hab-project/reauthstat/internal/model"
)

// BatchFile is the TOML batch definition.
type BatchFile struct {
	Jobs           *int         `toml:"jobs"`
	PEstimation    *string      `toml:"p-estimation"`
	Configurations []BatchEntry `toml:"configuration"`
}

// BatchEntry is one [[configuration]] block.
type BatchEntry struct {
	Label       string  `toml:"label"`
	Strategy    string  `toml:"strategy"`
	Trials      string  `toml:"trials"`
	BaseRates   *string `toml:"base-rates"`
	PEstimation *string `toml:"p-estimation"`
}

// LoadBatch reads a batch file and resolves it into config specs. Relative
// table paths are resolved against the batch file's directory.
func LoadBatch(path string) ([]model.ConfigSpec, int, error) {
	var batch BatchFile
	if _, err := toml.DecodeFile(path, &batch); err != nil {
		return nil, 0, fmt.Errorf("failed to decode batch file: %w", err)
	}
	if len(batch.Configurations) == 0 {
		return nil, 0, fmt.Errorf("batch file %s declares no configurations", path)
	}

	defaultEstimation := model.PFromGroupMean
	if batch.PEstimation != nil {
		est, err := parseEstimation(*batch.PEstimation)
		if err != nil {
			return nil, 0, err
		}
		defaultEstimation = est
	}

	baseDir := filepath.Dir(path)
	specs := make([]model.ConfigSpec, 0, len(batch.Configurations))
	for i, entry := range batch.Configurations {
		spec, err := resolveEntry(entry, baseDir, defaultEstimation)
		if err != nil {
			return nil, 0, fmt.Errorf("configuration %d: %w", i+1, err)
		}
		specs = append(specs, spec)
	}

	jobs := 0
	if batch.Jobs != nil {
		if *batch.Jobs < 0 {
			return nil, 0, fmt.Errorf("jobs must be >= 0")
		}
		jobs = *batch.Jobs
	}
	return specs, jobs, nil
}

func resolveEntry(entry BatchEntry, baseDir string, defaultEstimation model.PEstimation) (model.ConfigSpec, error) {
	if entry.Trials == "" {
		return model.ConfigSpec{}, fmt.Errorf("trials path is required")
	}
	spec := model.ConfigSpec{
		Label:       entry.Label,
		Strategy:    model.ParseStrategy(entry.Strategy),
		TrialsPath:  resolvePath(baseDir, entry.Trials),
		PEstimation: defaultEstimation,
	}
	if spec.Label == "" {
		spec.Label = filepath.Base(entry.Trials)
	}
	if entry.BaseRates != nil && *entry.BaseRates != "" {
		spec.BaseRatesPath = resolvePath(baseDir, *entry.BaseRates)
	}
	if entry.PEstimation != nil {
		est, err := parseEstimation(*entry.PEstimation)
		if err != nil {
			return model.ConfigSpec{}, err
		}
		spec.PEstimation = est
	}
	if spec.PEstimation == model.PFromBaseRate && spec.BaseRatesPath == "" {
		return model.ConfigSpec{}, fmt.Errorf("p-estimation %q requires a base-rates table", model.PFromBaseRate)
	}
	return spec, nil
}

func parseEstimation(raw string) (model.PEstimation, error) {
	switch model.PEstimation(raw) {
	case model.PFromGroupMean, model.PFromBaseRate:
		return model.PEstimation(raw), nil
	}
	return "", fmt.Errorf("unknown p-estimation %q (use %q or %q)", raw, model.PFromGroupMean, model.PFromBaseRate)
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
