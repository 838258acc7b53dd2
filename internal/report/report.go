package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/hab-project/reauthstat/internal/model"
)

const (
	naCell              = "NA"
	terminalWidthBackup = 80
)

// TerminalWidth reports the stdout width, falling back to 80 columns when
// stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// Render prints one table per comparison result plus a failure summary.
// Lines wider than width are truncated; width <= 0 disables truncation.
func Render(w io.Writer, results []model.ComparisonResult, width int) error {
	failures := 0
	for _, result := range results {
		if result.Err != nil {
			failures++
			continue
		}
		if err := renderResult(w, result, width); err != nil {
			return err
		}
	}
	if failures > 0 {
		if _, err := fmt.Fprintf(w, "Failed configurations: %d\n", failures); err != nil {
			return err
		}
		for _, result := range results {
			if result.Err == nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "  %s: %v\n", result.Label, result.Err); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderResult(w io.Writer, result model.ComparisonResult, width int) error {
	title := fmt.Sprintf("%s (strategy: %s)", result.Label, result.Strategy)
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if result.ProbScaleMax > 0 {
		if _, err := fmt.Fprintf(w, "Miss-probability axis scale: 0..%.4g\n", result.ProbScaleMax); err != nil {
			return err
		}
	}

	headers := []string{"Missed", "Trials", "MissProb", "Mean", "Median", "Q25", "Q75", "~Median", "~Q25", "~Q75", "p"}
	approxByKey := make(map[model.GroupKey]model.ApproxSummary, len(result.Approx))
	for _, a := range result.Approx {
		approxByKey[a.Key] = a
	}
	rows := make([][]string, 0, len(result.Empirical))
	for _, s := range result.Empirical {
		row := []string{
			strconv.Itoa(s.Key.NumMissed),
			strconv.Itoa(s.Count),
			fmt.Sprintf("%.3f", s.MissProb),
		}
		if s.Defined {
			row = append(row,
				fmt.Sprintf("%.2f", s.Mean),
				fmt.Sprintf("%.1f", s.Median),
				fmt.Sprintf("%.1f", s.Q25),
				fmt.Sprintf("%.1f", s.Q75),
			)
		} else {
			row = append(row, naCell, naCell, naCell, naCell)
		}
		if a, ok := approxByKey[s.Key]; ok {
			row = append(row,
				strconv.Itoa(a.Median),
				strconv.Itoa(a.Q25),
				strconv.Itoa(a.Q75),
				fmt.Sprintf("%.4f", a.P),
			)
		} else {
			row = append(row, naCell, naCell, naCell, naCell)
		}
		rows = append(rows, row)
	}
	// Base-rate estimation can produce approximations for configurations
	// absent from the empirical table; list them after the joined rows.
	for _, a := range result.Approx {
		if hasEmpirical(result.Empirical, a.Key) {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(a.Key.NumMissed),
			naCell, naCell, naCell, naCell, naCell, naCell,
			strconv.Itoa(a.Median),
			strconv.Itoa(a.Q25),
			strconv.Itoa(a.Q75),
			fmt.Sprintf("%.4f", a.P),
		})
	}

	rightAlign := map[int]bool{}
	for i := range headers {
		rightAlign[i] = true
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, truncateLine(line, width)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func hasEmpirical(summaries []model.GroupSummary, key model.GroupKey) bool {
	for _, s := range summaries {
		if s.Key == key {
			return true
		}
	}
	return false
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
