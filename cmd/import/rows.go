package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gym-cutoff/internal/stories/cutoffs"
)

var columns = []string{"price_range_start", "price_range_end", "admin_cut_percent", "gym_cut_percent"}

type row struct {
	line int
	edit cutoffs.FeeEdit
}

// readRows parses the CSV. A header row is optional. Rows that do not parse
// are returned as errors and left out.
func readRows(r io.Reader) ([]row, []error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		rows []row
		errs []error
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		line, _ := reader.FieldPos(0)

		if len(rows) == 0 && len(errs) == 0 && isHeader(record) {
			continue
		}

		edit, err := parseRecord(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		rows = append(rows, row{line: line, edit: edit})
	}

	return rows, errs
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), columns[0])
}

func parseRecord(record []string) (cutoffs.FeeEdit, error) {
	if len(record) != len(columns) {
		return cutoffs.FeeEdit{}, fmt.Errorf("expected %d columns, got %d", len(columns), len(record))
	}

	values := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(field), "%"), 64)
		if err != nil {
			return cutoffs.FeeEdit{}, fmt.Errorf("%s: invalid number %q", columns[i], field)
		}
		values[i] = v
	}

	return cutoffs.FeeEdit{
		PriceRangeStart: values[0],
		PriceRangeEnd:   values[1],
		AdminCutPercent: values[2],
		GymCutPercent:   values[3],
	}, nil
}
