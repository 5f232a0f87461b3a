package dataset

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// FromArrowRecord creates a Frame from an Arrow Record.
//
// Float and integer columns become numeric (nulls → NaN); string and
// boolean columns become categorical (nulls → the empty label).
func FromArrowRecord(record arrow.Record) (*Frame, error) {
	if record == nil {
		return nil, fmt.Errorf("record is nil")
	}

	schema := record.Schema()
	frame := NewFrame()

	for i := 0; i < int(record.NumCols()); i++ {
		name := schema.Field(i).Name
		col := record.Column(i)

		switch arr := col.(type) {
		case *array.Float64:
			values := make([]float64, arr.Len())
			for j := range values {
				if arr.IsNull(j) {
					values[j] = math.NaN()
					continue
				}
				values[j] = arr.Value(j)
			}
			if err := frame.AddNumeric(name, values); err != nil {
				return nil, err
			}

		case *array.Float32:
			values := make([]float64, arr.Len())
			for j := range values {
				if arr.IsNull(j) {
					values[j] = math.NaN()
					continue
				}
				values[j] = float64(arr.Value(j))
			}
			if err := frame.AddNumeric(name, values); err != nil {
				return nil, err
			}

		case *array.Int64:
			values := make([]float64, arr.Len())
			for j := range values {
				if arr.IsNull(j) {
					values[j] = math.NaN()
					continue
				}
				values[j] = float64(arr.Value(j))
			}
			if err := frame.AddNumeric(name, values); err != nil {
				return nil, err
			}

		case *array.Int32:
			values := make([]float64, arr.Len())
			for j := range values {
				if arr.IsNull(j) {
					values[j] = math.NaN()
					continue
				}
				values[j] = float64(arr.Value(j))
			}
			if err := frame.AddNumeric(name, values); err != nil {
				return nil, err
			}

		case *array.String:
			labels := make([]string, arr.Len())
			for j := range labels {
				if arr.IsNull(j) {
					continue
				}
				labels[j] = arr.Value(j)
			}
			if err := frame.AddCategorical(name, labels); err != nil {
				return nil, err
			}

		case *array.Boolean:
			labels := make([]string, arr.Len())
			for j := range labels {
				if arr.IsNull(j) {
					continue
				}
				if arr.Value(j) {
					labels[j] = "true"
				} else {
					labels[j] = "false"
				}
			}
			if err := frame.AddCategorical(name, labels); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("column %s: unsupported arrow type %s", name, col.DataType())
		}
	}

	return frame, nil
}

// ToArrowRecord exports the Frame to an Arrow Record: numeric columns as
// float64 arrays, categorical columns as string arrays.
// The caller is responsible for calling Release() on the returned Record.
func (f *Frame) ToArrowRecord(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, len(f.names))
	arrays := make([]arrow.Array, len(f.names))

	for i, name := range f.names {
		col := f.cols[name]
		switch col.kind {
		case numericCol:
			fields[i] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
			builder := array.NewFloat64Builder(mem)
			builder.AppendValues(col.values, nil)
			arrays[i] = builder.NewArray()
			builder.Release()
		case categoricalCol:
			fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
			builder := array.NewStringBuilder(mem)
			builder.AppendValues(col.labels, nil)
			arrays[i] = builder.NewArray()
			builder.Release()
		}
	}

	schema := arrow.NewSchema(fields, nil)
	record := array.NewRecord(schema, arrays, int64(f.rows))

	// Release arrays (Record retains them)
	for _, arr := range arrays {
		arr.Release()
	}

	return record, nil
}
