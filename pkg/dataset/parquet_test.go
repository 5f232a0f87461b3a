package dataset_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/statkit/formula/pkg/dataset"
)

type parquetRow struct {
	X       float64 `parquet:"x"`
	N       int64   `parquet:"n"`
	Species string  `parquet:"species"`
}

func writeParquetRows(t *testing.T, rows []parquetRow) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[parquetRow](&buf)
	if _, err := w.Write(rows); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestReadParquet(t *testing.T) {
	rows := []parquetRow{
		{X: 1.5, N: 10, Species: "setosa"},
		{X: 2.5, N: 20, Species: "versicolor"},
		{X: 3.5, N: 30, Species: "setosa"},
	}
	r := writeParquetRows(t, rows)

	frame, err := dataset.ReadParquetFromReader(r, r.Size())
	if err != nil {
		t.Fatal(err)
	}

	if frame.NumRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", frame.NumRows())
	}

	x, err := frame.Column("x")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(x, []float64{1.5, 2.5, 3.5}) {
		t.Errorf("unexpected x %v", x)
	}

	n, err := frame.Column("n")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(n, []float64{10, 20, 30}) {
		t.Errorf("expected int column widened to float64, got %v", n)
	}

	if !frame.IsCategorical("species") {
		t.Fatal("expected byte-array column to be categorical")
	}
	levels, err := frame.Levels("species")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(levels, []string{"setosa", "versicolor"}) {
		t.Errorf("unexpected levels %v", levels)
	}
}

func TestReadParquetColumnSubset(t *testing.T) {
	rows := []parquetRow{
		{X: 1, N: 10, Species: "a"},
		{X: 2, N: 20, Species: "b"},
	}
	r := writeParquetRows(t, rows)

	opts := dataset.DefaultParquetReadOptions()
	opts.Columns = []string{"x"}
	frame, err := dataset.ReadParquetFromReader(r, r.Size(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if got := frame.ColumnNames(); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("unexpected columns %v", got)
	}

	opts.Columns = []string{"nope"}
	if _, err := dataset.ReadParquetFromReader(r, r.Size(), opts); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestReadParquetMaxRowsAndForcedCategorical(t *testing.T) {
	rows := []parquetRow{
		{X: 1, N: 1, Species: "a"},
		{X: 2, N: 2, Species: "b"},
		{X: 3, N: 1, Species: "c"},
	}
	r := writeParquetRows(t, rows)

	opts := dataset.DefaultParquetReadOptions()
	opts.MaxRows = 2
	opts.Categorical = []string{"n"}
	frame, err := dataset.ReadParquetFromReader(r, r.Size(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if frame.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", frame.NumRows())
	}
	if !frame.IsCategorical("n") {
		t.Fatal("expected n to be forced categorical")
	}
	levels, err := frame.Levels("n")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(levels, []string{"1", "2"}) {
		t.Errorf("unexpected levels %v", levels)
	}
}
