// Package dataset provides the tabular data sources that formulas are
// materialized against.
//
// The compiler only needs the [Source] capability contract: fetch a named
// column, know the row count, and know whether a column is categorical.
// [Frame] is the in-memory reference implementation, filled directly or
// loaded from CSV, Parquet or Arrow data.
package dataset

import (
	"fmt"

	"github.com/statkit/formula/pkg/types"
)

// Source is the named-column tabular capability a formula evaluation needs.
//
// Categorical level enumeration follows first-row-appearance order, which
// fixes the baseline level for dummy coding deterministically.
type Source interface {
	// NumRows returns the number of rows.
	NumRows() int
	// ColumnNames returns all column names in insertion order.
	ColumnNames() []string
	// HasColumn reports whether a column exists.
	HasColumn(name string) bool
	// IsCategorical reports whether the named column holds discrete labels
	// rather than numeric values.
	IsCategorical(name string) bool
	// Column returns a numeric column's values. The returned slice must not
	// be modified.
	Column(name string) ([]float64, error)
	// Levels returns a categorical column's distinct values in
	// first-appearance order.
	Levels(name string) ([]string, error)
	// LevelCodes returns, per row, the index into Levels of that row's value.
	LevelCodes(name string) ([]int, error)
}

type colKind uint8

const (
	numericCol colKind = iota
	categoricalCol
)

// column stores one Frame column. Numeric columns keep raw float64 values;
// categorical columns keep per-row labels plus an interned level table.
type column struct {
	kind   colKind
	values []float64
	labels []string
	levels []string
	codes  []int
}

// Frame is an in-memory column store preserving insertion order.
type Frame struct {
	names []string
	cols  map[string]*column
	rows  int
	typed bool // rows is fixed once the first column is added
}

// NewFrame creates an empty Frame.
func NewFrame() *Frame {
	return &Frame{
		cols: make(map[string]*column),
	}
}

// AddNumeric adds a float64 column. A column with the same name is
// replaced. All columns must share the same length.
func (f *Frame) AddNumeric(name string, values []float64) error {
	if err := f.checkLen(name, len(values)); err != nil {
		return err
	}
	f.insert(name, &column{kind: numericCol, values: values})
	return nil
}

// AddCategorical adds a label column, interning its distinct values in
// first-appearance order.
func (f *Frame) AddCategorical(name string, labels []string) error {
	if err := f.checkLen(name, len(labels)); err != nil {
		return err
	}

	levels := make([]string, 0)
	index := make(map[string]int)
	codes := make([]int, len(labels))
	for i, lab := range labels {
		code, ok := index[lab]
		if !ok {
			code = len(levels)
			index[lab] = code
			levels = append(levels, lab)
		}
		codes[i] = code
	}

	f.insert(name, &column{
		kind:   categoricalCol,
		labels: labels,
		levels: levels,
		codes:  codes,
	})
	return nil
}

func (f *Frame) checkLen(name string, n int) error {
	if f.typed && n != f.rows {
		return types.NewError(types.ErrLengthMismatch,
			fmt.Sprintf("Column %q has %d rows, frame has %d", name, n, f.rows), -1)
	}
	return nil
}

func (f *Frame) insert(name string, col *column) {
	if _, exists := f.cols[name]; !exists {
		f.names = append(f.names, name)
	}
	f.cols[name] = col
	if !f.typed {
		switch col.kind {
		case numericCol:
			f.rows = len(col.values)
		case categoricalCol:
			f.rows = len(col.labels)
		}
		f.typed = true
	}
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	return f.rows
}

// ColumnNames returns all column names in insertion order.
func (f *Frame) ColumnNames() []string {
	return f.names
}

// HasColumn reports whether a column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// IsCategorical reports whether the named column holds discrete labels.
// Unknown columns report false; existence is checked by the accessors.
func (f *Frame) IsCategorical(name string) bool {
	col, ok := f.cols[name]
	return ok && col.kind == categoricalCol
}

// Column returns a numeric column's values.
func (f *Frame) Column(name string) ([]float64, error) {
	col, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	if col.kind != numericCol {
		return nil, types.NewError(types.ErrColumnKind,
			fmt.Sprintf("Column %q is categorical, not numeric", name), -1).WithToken(name)
	}
	return col.values, nil
}

// Labels returns a categorical column's raw per-row labels.
func (f *Frame) Labels(name string) ([]string, error) {
	col, err := f.lookupCategorical(name)
	if err != nil {
		return nil, err
	}
	return col.labels, nil
}

// Levels returns a categorical column's distinct values in
// first-appearance order.
func (f *Frame) Levels(name string) ([]string, error) {
	col, err := f.lookupCategorical(name)
	if err != nil {
		return nil, err
	}
	return col.levels, nil
}

// LevelCodes returns, per row, the index into Levels of that row's value.
func (f *Frame) LevelCodes(name string) ([]int, error) {
	col, err := f.lookupCategorical(name)
	if err != nil {
		return nil, err
	}
	return col.codes, nil
}

func (f *Frame) lookup(name string) (*column, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, types.NewError(types.ErrColumnNotFound,
			fmt.Sprintf("Column %q not found", name), -1).WithToken(name)
	}
	return col, nil
}

func (f *Frame) lookupCategorical(name string) (*column, error) {
	col, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	if col.kind != categoricalCol {
		return nil, types.NewError(types.ErrColumnKind,
			fmt.Sprintf("Column %q is numeric, not categorical", name), -1).WithToken(name)
	}
	return col, nil
}
