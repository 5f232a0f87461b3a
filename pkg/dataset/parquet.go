package dataset

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// ParquetReadOptions configures Parquet reading behavior.
type ParquetReadOptions struct {
	Columns     []string // Only read these columns (nil = all)
	Categorical []string // Force these columns categorical even if numeric
	MaxRows     int      // Max rows to read (0 = unlimited)
}

// DefaultParquetReadOptions returns default Parquet reading options.
func DefaultParquetReadOptions() ParquetReadOptions {
	return ParquetReadOptions{}
}

// ReadParquet reads a Parquet file into a Frame.
func ReadParquet(path string, opts ...ParquetReadOptions) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return ReadParquetFromReader(f, stat.Size(), opts...)
}

// pqBuilder accumulates one column while scanning parquet rows.
type pqBuilder struct {
	categorical bool
	f64Data     []float64
	strData     []string
}

// ReadParquetFromReader reads Parquet data from an io.ReaderAt into a Frame.
//
// Physical doubles, floats and integers become numeric columns; byte arrays
// and booleans become categorical columns. Nulls become NaN (numeric) or
// the empty label (categorical).
func ReadParquetFromReader(r io.ReaderAt, size int64, opts ...ParquetReadOptions) (*Frame, error) {
	opt := DefaultParquetReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	schema := pf.Schema()

	// Determine columns to read
	var colNames []string
	if len(opt.Columns) > 0 {
		colNames = opt.Columns
	} else {
		fields := schema.Fields()
		colNames = make([]string, len(fields))
		for i, f := range fields {
			colNames[i] = f.Name()
		}
	}

	// Build column index map
	colIndexMap := make(map[string]int)
	for i, col := range schema.Columns() {
		if len(col) > 0 {
			colIndexMap[col[0]] = i
		}
	}

	forced := make(map[string]struct{}, len(opt.Categorical))
	for _, name := range opt.Categorical {
		forced[name] = struct{}{}
	}

	builders := make([]pqBuilder, len(colNames))
	colIndices := make([]int, len(colNames))
	for i, name := range colNames {
		idx, ok := colIndexMap[name]
		if !ok {
			return nil, fmt.Errorf("column %q not found in parquet file", name)
		}
		colIndices[i] = idx
		_, forceCat := forced[name]
		builders[i].categorical = forceCat || parquetColumnIsCategorical(schema, name)
	}

	// Sequential row read across row groups
	rowCount := 0
	for _, rg := range pf.RowGroups() {
		if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
			break
		}

		rows := rg.Rows()
		rowBuf := make([]parquet.Row, 1000)
		for {
			n, err := rows.ReadRows(rowBuf)
			if err != nil && err != io.EOF {
				rows.Close()
				return nil, fmt.Errorf("failed to read rows: %w", err)
			}
			if n == 0 {
				break
			}

			for _, row := range rowBuf[:n] {
				if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
					break
				}
				for i, colIdx := range colIndices {
					if colIdx < len(row) {
						appendParquetValue(&builders[i], row[colIdx])
					} else {
						appendParquetNull(&builders[i])
					}
				}
				rowCount++
			}

			if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
				break
			}
		}
		rows.Close()
	}

	frame := NewFrame()
	for i, name := range colNames {
		b := &builders[i]
		if b.categorical {
			if err := frame.AddCategorical(name, b.strData); err != nil {
				return nil, err
			}
		} else {
			if err := frame.AddNumeric(name, b.f64Data); err != nil {
				return nil, err
			}
		}
	}
	return frame, nil
}

func parquetColumnIsCategorical(schema *parquet.Schema, name string) bool {
	for _, field := range schema.Fields() {
		if field.Name() != name {
			continue
		}
		t := field.Type()
		if t == nil {
			return true
		}
		switch t.Kind() {
		case parquet.Boolean, parquet.ByteArray, parquet.FixedLenByteArray:
			return true
		default:
			return false
		}
	}
	return true
}

func appendParquetNull(b *pqBuilder) {
	if b.categorical {
		b.strData = append(b.strData, "")
	} else {
		b.f64Data = append(b.f64Data, math.NaN())
	}
}

func appendParquetValue(b *pqBuilder, val parquet.Value) {
	if val.IsNull() {
		appendParquetNull(b)
		return
	}

	if b.categorical {
		switch val.Kind() {
		case parquet.Boolean:
			b.strData = append(b.strData, strconv.FormatBool(val.Boolean()))
		case parquet.Int32:
			b.strData = append(b.strData, strconv.FormatInt(int64(val.Int32()), 10))
		case parquet.Int64:
			b.strData = append(b.strData, strconv.FormatInt(val.Int64(), 10))
		case parquet.Float:
			b.strData = append(b.strData, strconv.FormatFloat(float64(val.Float()), 'g', -1, 64))
		case parquet.Double:
			b.strData = append(b.strData, strconv.FormatFloat(val.Double(), 'g', -1, 64))
		default:
			b.strData = append(b.strData, string(val.ByteArray()))
		}
		return
	}

	switch val.Kind() {
	case parquet.Double:
		b.f64Data = append(b.f64Data, val.Double())
	case parquet.Float:
		b.f64Data = append(b.f64Data, float64(val.Float()))
	case parquet.Int64:
		b.f64Data = append(b.f64Data, float64(val.Int64()))
	case parquet.Int32:
		b.f64Data = append(b.f64Data, float64(val.Int32()))
	default:
		b.f64Data = append(b.f64Data, math.NaN())
	}
}
