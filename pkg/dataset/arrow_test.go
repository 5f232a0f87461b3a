package dataset_test

import (
	"reflect"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/statkit/formula/pkg/dataset"
)

func TestFromArrowRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "x", Type: arrow.PrimitiveTypes.Float64},
		{Name: "n", Type: arrow.PrimitiveTypes.Int64},
		{Name: "g", Type: arrow.BinaryTypes.String},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Float64Builder).AppendValues([]float64{1.5, 2.5}, nil)
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{10, 20}, nil)
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"a", "b"}, nil)

	record := b.NewRecord()
	defer record.Release()

	frame, err := dataset.FromArrowRecord(record)
	if err != nil {
		t.Fatal(err)
	}

	if frame.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", frame.NumRows())
	}
	x, err := frame.Column("x")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(x, []float64{1.5, 2.5}) {
		t.Errorf("unexpected x %v", x)
	}
	n, err := frame.Column("n")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(n, []float64{10, 20}) {
		t.Errorf("expected int64 column widened to float64, got %v", n)
	}
	if !frame.IsCategorical("g") {
		t.Error("expected string column to be categorical")
	}
}

func TestToArrowRecordRoundTrip(t *testing.T) {
	frame := dataset.NewFrame()
	if err := frame.AddNumeric("x", []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := frame.AddCategorical("g", []string{"a", "b", "a"}); err != nil {
		t.Fatal(err)
	}

	record, err := frame.ToArrowRecord(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer record.Release()

	if record.NumRows() != 3 || record.NumCols() != 2 {
		t.Fatalf("unexpected record shape %dx%d", record.NumRows(), record.NumCols())
	}

	back, err := dataset.FromArrowRecord(record)
	if err != nil {
		t.Fatal(err)
	}
	x, err := back.Column("x")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(x, []float64{1, 2, 3}) {
		t.Errorf("unexpected round-tripped values %v", x)
	}
	labels, err := back.Labels("g")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(labels, []string{"a", "b", "a"}) {
		t.Errorf("unexpected round-tripped labels %v", labels)
	}
}
