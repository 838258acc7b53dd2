package tsv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/hab-project/reauthstat/internal/model"
)

// naField is how undefined statistics serialize. Writing 0 instead would be
// indistinguishable from a real zero downstream.
const naField = "NA"

// WriteSummaries emits the aggregated and approximated tables as one flat
// TSV, joined on group key. Groups without an approximation carry NA in the
// approx columns.
func WriteSummaries(w io.Writer, empirical []model.GroupSummary, approx []model.ApproxSummary) error {
	byKey := make(map[model.GroupKey]model.ApproxSummary, len(approx))
	for _, a := range approx {
		byKey[a.Key] = a
	}

	bw := bufio.NewWriter(w)
	_, err := fmt.Fprintln(bw, "key_strategy\tkey_param\tPC\tnum_received\tnum_missed\tcount\tmiss_prob\tmean\tmedian\tq25\tq75\tp_approx\tmedian_approx\tq25_approx\tq75_approx")
	if err != nil {
		return err
	}
	for _, s := range empirical {
		row := []string{
			string(s.Key.Strategy),
			strconv.Itoa(s.Key.KeyParam),
			strconv.Itoa(s.Key.PC),
			strconv.Itoa(s.Key.NumReceived),
			strconv.Itoa(s.Key.NumMissed),
			strconv.Itoa(s.Count),
			formatFloat(s.MissProb),
		}
		if s.Defined {
			row = append(row,
				formatFloat(s.Mean),
				formatFloat(s.Median),
				formatFloat(s.Q25),
				formatFloat(s.Q75),
			)
		} else {
			row = append(row, naField, naField, naField, naField)
		}
		if a, ok := byKey[s.Key]; ok {
			row = append(row,
				formatFloat(a.P),
				strconv.Itoa(a.Median),
				strconv.Itoa(a.Q25),
				strconv.Itoa(a.Q75),
			)
		} else {
			row = append(row, naField, naField, naField, naField)
		}
		if err := writeRow(bw, row); err != nil {
			return err
		}
	}
	// Base-rate estimation keys approximations by strategy and missed count
	// alone; those never join an empirical row, so list them after the
	// joined rows instead of dropping them.
	empiricalKeys := make(map[model.GroupKey]bool, len(empirical))
	for _, s := range empirical {
		empiricalKeys[s.Key] = true
	}
	for _, a := range approx {
		if empiricalKeys[a.Key] {
			continue
		}
		row := []string{
			string(a.Key.Strategy),
			strconv.Itoa(a.Key.KeyParam),
			strconv.Itoa(a.Key.PC),
			strconv.Itoa(a.Key.NumReceived),
			strconv.Itoa(a.Key.NumMissed),
			naField, naField, naField, naField, naField, naField,
			formatFloat(a.P),
			strconv.Itoa(a.Median),
			strconv.Itoa(a.Q25),
			strconv.Itoa(a.Q75),
		}
		if err := writeRow(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRow(w io.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := io.WriteString(w, "\t"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, f); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}
