package evaluator

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"
)

// Matrix is the assembled design matrix: named float64 columns of equal
// length in stable term order.
type Matrix struct {
	Names []string
	Cols  [][]float64
	Rows  int
}

// NumCols returns the number of columns.
func (m *Matrix) NumCols() int {
	return len(m.Cols)
}

// Col returns column j. The returned slice must not be modified.
func (m *Matrix) Col(j int) []float64 {
	return m.Cols[j]
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.Cols[j][i]
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, len(m.Cols))
	for j, col := range m.Cols {
		row[j] = col[i]
	}
	return row
}

// ToArrowRecord exports the matrix as an Arrow Record of float64 columns.
// The caller is responsible for calling Release() on the returned Record.
func (m *Matrix) ToArrowRecord(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, len(m.Names))
	arrays := make([]arrow.Array, len(m.Names))
	for j, name := range m.Names {
		fields[j] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: false}
		builder := array.NewFloat64Builder(mem)
		builder.AppendValues(m.Cols[j], nil)
		arrays[j] = builder.NewArray()
		builder.Release()
	}

	schema := arrow.NewSchema(fields, nil)
	record := array.NewRecord(schema, arrays, int64(m.Rows))

	for _, arr := range arrays {
		arr.Release()
	}

	return record, nil
}

// WriteCSV writes the matrix as CSV with a header row of column names.
func (m *Matrix) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(m.Names); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(m.Cols))
	for i := 0; i < m.Rows; i++ {
		for j, col := range m.Cols {
			record[j] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteParquet writes the matrix as a Parquet file of double columns.
func (m *Matrix) WriteParquet(w io.Writer) error {
	if len(m.Cols) == 0 {
		return nil
	}

	group := make(parquet.Group, len(m.Names))
	for _, name := range m.Names {
		group[name] = parquet.Leaf(parquet.DoubleType)
	}
	schema := parquet.NewSchema("design_matrix", group)

	// The schema orders group fields alphabetically; map matrix columns to
	// the schema's field order so values land under the right names.
	fieldOrder := make([]int, len(m.Names))
	byName := make(map[string]int, len(m.Names))
	for j, name := range m.Names {
		byName[name] = j
	}
	for fi, field := range schema.Fields() {
		fieldOrder[fi] = byName[field.Name()]
	}

	pw := parquet.NewWriter(w, schema)

	const batchSize = 1000
	rows := make([]parquet.Row, 0, batchSize)
	for i := 0; i < m.Rows; i++ {
		row := make(parquet.Row, len(m.Cols))
		for fi, j := range fieldOrder {
			row[fi] = parquet.DoubleValue(m.Cols[j][i]).Level(0, 0, fi)
		}
		rows = append(rows, row)

		if len(rows) >= batchSize {
			if _, err := pw.WriteRows(rows); err != nil {
				return fmt.Errorf("failed to write rows at %d: %w", i-len(rows)+1, err)
			}
			rows = rows[:0]
		}
	}

	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return fmt.Errorf("failed to write final rows: %w", err)
		}
	}

	return pw.Close()
}
