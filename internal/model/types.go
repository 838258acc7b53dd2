// Package model defines shared data structures.
package model

import "strings"

// Strategy identifies the shape of the per-layer key-charge distribution.
type Strategy string

// Known key-charge strategies from the benchmark harness.
const (
	StrategyExponential     Strategy = "exponential"
	StrategyLinear          Strategy = "linear"
	StrategyLogarithmic     Strategy = "logarithmic"
	StrategySkipExponential Strategy = "skip-exponential"
	StrategyCustom          Strategy = "custom"
)

// ParseStrategy maps a table label to a Strategy. Unknown labels are kept
// verbatim so configurations with experimental distributions still group
// correctly.
func ParseStrategy(label string) Strategy {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "exponential":
		return StrategyExponential
	case "linear":
		return StrategyLinear
	case "logarithmic":
		return StrategyLogarithmic
	case "skip-exponential":
		return StrategySkipExponential
	case "custom":
		return StrategyCustom
	}
	return Strategy(strings.TrimSpace(label))
}

// Observation is one simulated trial: how many messages a receiver missed
// and how many further messages it took to re-authenticate the sender.
type Observation struct {
	Strategy    Strategy
	KeyParam    int // key charges or key lifetime, depending on the table
	PC          int // pre-issued certificate count
	NumReceived int
	NumMissed   int
	NumToReauth int
	Censored    bool // no re-authentication within the observation window
}

// GroupKey identifies one experimental configuration. Observations sharing
// a GroupKey form one group.
type GroupKey struct {
	Strategy    Strategy
	KeyParam    int
	PC          int
	NumReceived int
	NumMissed   int
}

// Key returns the group key of an observation.
func (o Observation) Key() GroupKey {
	return GroupKey{
		Strategy:    o.Strategy,
		KeyParam:    o.KeyParam,
		PC:          o.PC,
		NumReceived: o.NumReceived,
		NumMissed:   o.NumMissed,
	}
}

// GroupSummary holds empirical statistics for one group. The quantile and
// mean fields are meaningful only when Defined is true; a group whose every
// trial is censored has Defined=false and MissProb=1.
type GroupSummary struct {
	Key           GroupKey
	Defined       bool
	Median        float64
	Mean          float64
	Q25           float64
	Q75           float64
	MissProb      float64
	Count         int
	CensoredCount int
}

// ApproxSummary holds geometric closed-form quantile estimates for one group.
type ApproxSummary struct {
	Key    GroupKey
	P      float64
	Median int
	Q25    int
	Q75    int
}

// BaseRate is one row of a pre-aggregated table: a declared mean
// time-to-reauthenticate per configuration instead of per-trial rows.
type BaseRate struct {
	Configuration string
	NumMissed     int
	MeanReauth    float64
}

// PEstimation selects where the approximator takes its success probability
// from. The benchmark scripts were inconsistent here, so the convention is
// declared per configuration.
type PEstimation string

// Supported estimation conventions.
const (
	// PFromGroupMean derives p from each group's empirical mean.
	PFromGroupMean PEstimation = "group-mean"
	// PFromBaseRate derives p from the configuration's declared base rate.
	PFromBaseRate PEstimation = "base-rate"
)

// ConfigSpec names the inputs of one comparison configuration.
type ConfigSpec struct {
	Label         string
	Strategy      Strategy
	TrialsPath    string
	BaseRatesPath string
	PEstimation   PEstimation
}

// ComparisonResult bundles the empirical and approximate summary series for
// one configuration. Err is set when the configuration failed to load; a
// failed configuration never blocks the rest of the batch.
type ComparisonResult struct {
	Label        string
	Strategy     Strategy
	Empirical    []GroupSummary
	Approx       []ApproxSummary
	ProbScaleMax float64
	Err          error
}
