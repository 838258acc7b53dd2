// Package tsv reads and writes the benchmark's tab-separated tables.
package tsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hab-project/reauthstat/internal/model"
)

// ErrNoRows is returned when a table contains a header but no data rows.
var ErrNoRows = errors.New("table has no data rows")

// MalformedInputError describes an unusable table: a missing required
// column or a field that failed to parse.
type MalformedInputError struct {
	Line   int // 1-based, 0 when the header itself is at fault
	Column string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("malformed table: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("malformed table: line %d, column %q: %s", e.Line, e.Column, e.Reason)
}

// Censored markers accepted in the num_to_reauth column.
var censoredMarkers = map[string]bool{"": true, "na": true, "nan": true}

// Header aliases: the harness emitted both naming conventions over time.
var (
	strategyAliases = []string{"key_selection", "key_strategy"}
	keyParamAliases = []string{"key_lifetime", "key_charges"}
)

// ReadObservations parses a per-trial table. The header row is required and
// drives column lookup, so column order does not matter. An empty or NA
// num_to_reauth field marks a censored trial, not an error.
func ReadObservations(r io.Reader) ([]model.Observation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	header, err := readHeader(scanner)
	if err != nil {
		return nil, err
	}
	strategyCol, err := findColumn(header, strategyAliases...)
	if err != nil {
		return nil, err
	}
	keyParamCol, err := findColumn(header, keyParamAliases...)
	if err != nil {
		return nil, err
	}
	pcCol, err := findColumn(header, "PC")
	if err != nil {
		return nil, err
	}
	receivedCol, err := findColumn(header, "num_received")
	if err != nil {
		return nil, err
	}
	missedCol, err := findColumn(header, "num_missed")
	if err != nil {
		return nil, err
	}
	reauthCol, err := findColumn(header, "num_to_reauth")
	if err != nil {
		return nil, err
	}

	var observations []model.Observation
	line := 1
	for scanner.Scan() {
		line++
		fields := strings.Split(scanner.Text(), "\t")
		if blankRow(fields) {
			continue
		}
		obs := model.Observation{
			Strategy: model.ParseStrategy(fieldAt(fields, strategyCol)),
		}
		if obs.KeyParam, err = parseIntField(fields, keyParamCol, header[keyParamCol], line); err != nil {
			return nil, err
		}
		if obs.PC, err = parseIntField(fields, pcCol, header[pcCol], line); err != nil {
			return nil, err
		}
		if obs.NumReceived, err = parseIntField(fields, receivedCol, header[receivedCol], line); err != nil {
			return nil, err
		}
		if obs.NumMissed, err = parseIntField(fields, missedCol, header[missedCol], line); err != nil {
			return nil, err
		}
		reauthRaw := fieldAt(fields, reauthCol)
		if censoredMarkers[strings.ToLower(strings.TrimSpace(reauthRaw))] {
			obs.Censored = true
		} else {
			if obs.NumToReauth, err = parseIntField(fields, reauthCol, header[reauthCol], line); err != nil {
				return nil, err
			}
			if obs.NumToReauth < 0 {
				return nil, &MalformedInputError{Line: line, Column: header[reauthCol], Reason: "negative value"}
			}
		}
		observations = append(observations, obs)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, ErrNoRows
	}
	return observations, nil
}

// ReadBaseRates parses a pre-aggregated table with one row per
// configuration.
func ReadBaseRates(r io.Reader) ([]model.BaseRate, error) {
	scanner := bufio.NewScanner(r)
	header, err := readHeader(scanner)
	if err != nil {
		return nil, err
	}
	configCol, err := findColumn(header, "configuration")
	if err != nil {
		return nil, err
	}
	missedCol, err := findColumn(header, "num_missed")
	if err != nil {
		return nil, err
	}
	meanCol, err := findColumn(header, "mean_reauth")
	if err != nil {
		return nil, err
	}

	var rates []model.BaseRate
	line := 1
	for scanner.Scan() {
		line++
		fields := strings.Split(scanner.Text(), "\t")
		if blankRow(fields) {
			continue
		}
		rate := model.BaseRate{Configuration: strings.TrimSpace(fieldAt(fields, configCol))}
		if rate.NumMissed, err = parseIntField(fields, missedCol, header[missedCol], line); err != nil {
			return nil, err
		}
		raw := strings.TrimSpace(fieldAt(fields, meanCol))
		rate.MeanReauth, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &MalformedInputError{Line: line, Column: header[meanCol], Reason: fmt.Sprintf("not a number: %q", raw)}
		}
		rates = append(rates, rate)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, ErrNoRows
	}
	return rates, nil
}

func readHeader(scanner *bufio.Scanner) ([]string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRows
	}
	header := strings.Split(scanner.Text(), "\t")
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}
	return header, nil
}

func findColumn(header []string, names ...string) (int, error) {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(h, name) {
				return i, nil
			}
		}
	}
	return 0, &MalformedInputError{Column: strings.Join(names, "/"), Reason: "required column missing"}
}

func fieldAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

func parseIntField(fields []string, idx int, column string, line int) (int, error) {
	raw := strings.TrimSpace(fieldAt(fields, idx))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &MalformedInputError{Line: line, Column: column, Reason: fmt.Sprintf("not an integer: %q", raw)}
	}
	return v, nil
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
