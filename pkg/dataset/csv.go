package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// CSVReadOptions configures CSV reading behavior.
type CSVReadOptions struct {
	Delimiter   rune     // Field delimiter (default ',')
	HasHeader   bool     // First row is header (default true)
	ColumnNames []string // Override column names
	Categorical []string // Force these columns categorical even if numeric-looking
	NullValues  []string // Strings to treat as null
	SkipRows    int      // Skip first N rows
	MaxRows     int      // Max rows to read (0 = unlimited)
	TrimSpace   bool     // Trim whitespace from values
	Comment     rune     // Comment character (skip lines starting with this)
}

// DefaultCSVReadOptions returns default CSV reading options.
func DefaultCSVReadOptions() CSVReadOptions {
	return CSVReadOptions{
		Delimiter:  ',',
		HasHeader:  true,
		NullValues: []string{"", "null", "NULL", "NA", "N/A", "nan", "NaN"},
		TrimSpace:  true,
	}
}

// ReadCSV reads a CSV file into a Frame.
func ReadCSV(path string, opts ...CSVReadOptions) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadCSVFromReader(f, opts...)
}

// ReadCSVFromReader reads CSV data from an io.Reader into a Frame.
//
// Column types are inferred: a column is numeric when every non-null value
// parses as a float, categorical otherwise. Null tokens become NaN in
// numeric columns and stay as empty-string labels in categorical columns
// (missing values pass through; no imputation happens here).
func ReadCSVFromReader(r io.Reader, opts ...CSVReadOptions) (*Frame, error) {
	opt := DefaultCSVReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	reader := csv.NewReader(r)
	reader.Comma = opt.Delimiter
	if opt.Comment != 0 {
		reader.Comment = opt.Comment
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if opt.SkipRows > 0 {
		if opt.SkipRows >= len(records) {
			records = nil
		} else {
			records = records[opt.SkipRows:]
		}
	}
	if len(records) == 0 {
		return NewFrame(), nil
	}

	// Resolve column names
	var names []string
	switch {
	case len(opt.ColumnNames) > 0:
		names = opt.ColumnNames
		if opt.HasHeader {
			records = records[1:]
		}
	case opt.HasHeader:
		names = records[0]
		records = records[1:]
	default:
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = fmt.Sprintf("column_%d", i)
		}
	}

	if opt.MaxRows > 0 && len(records) > opt.MaxRows {
		records = records[:opt.MaxRows]
	}

	nullSet := make(map[string]struct{}, len(opt.NullValues))
	for _, nv := range opt.NullValues {
		nullSet[nv] = struct{}{}
	}
	forced := make(map[string]struct{}, len(opt.Categorical))
	for _, name := range opt.Categorical {
		forced[name] = struct{}{}
	}

	frame := NewFrame()
	for colIdx, name := range names {
		raw := make([]string, len(records))
		for rowIdx, record := range records {
			var v string
			if colIdx < len(record) {
				v = record[colIdx]
			}
			if opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			raw[rowIdx] = v
		}

		_, forceCat := forced[name]
		if !forceCat && columnIsNumeric(raw, nullSet) {
			values := make([]float64, len(raw))
			for i, v := range raw {
				if _, isNull := nullSet[v]; isNull {
					values[i] = math.NaN()
					continue
				}
				values[i], _ = strconv.ParseFloat(v, 64)
			}
			if err := frame.AddNumeric(name, values); err != nil {
				return nil, err
			}
			continue
		}

		if err := frame.AddCategorical(name, raw); err != nil {
			return nil, err
		}
	}

	return frame, nil
}

// columnIsNumeric reports whether every non-null value parses as a float.
// An all-null column stays categorical.
func columnIsNumeric(values []string, nullSet map[string]struct{}) bool {
	sawValue := false
	for _, v := range values {
		if _, isNull := nullSet[v]; isNull {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		sawValue = true
	}
	return sawValue
}
