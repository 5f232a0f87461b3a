package evaluator_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/statkit/formula/pkg/dataset"
	"github.com/statkit/formula/pkg/evaluator"
)

func testMatrix() *evaluator.Matrix {
	return &evaluator.Matrix{
		Names: []string{"(Intercept)", "x1", "x1:x2"},
		Cols: [][]float64{
			{1, 1, 1},
			{1, 2, 3},
			{2, 6, 12},
		},
		Rows: 3,
	}
}

func TestMatrixAccessors(t *testing.T) {
	m := testMatrix()

	if m.NumCols() != 3 {
		t.Errorf("expected 3 columns, got %d", m.NumCols())
	}
	if m.At(1, 2) != 6 {
		t.Errorf("expected At(1,2)=6, got %v", m.At(1, 2))
	}
	if got := m.Row(2); !reflect.DeepEqual(got, []float64{1, 3, 12}) {
		t.Errorf("unexpected row %v", got)
	}
	if got := m.Col(1); !reflect.DeepEqual(got, []float64{1, 2, 3}) {
		t.Errorf("unexpected column %v", got)
	}
}

func TestMatrixWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := testMatrix().WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"(Intercept),x1,x1:x2",
		"1,1,2",
		"1,2,6",
		"1,3,12",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("unexpected csv output:\n%s\nwant:\n%s", got, want)
	}
}

func TestMatrixToArrowRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)

	record, err := testMatrix().ToArrowRecord(mem)
	if err != nil {
		t.Fatal(err)
	}

	if record.NumRows() != 3 || record.NumCols() != 3 {
		t.Fatalf("unexpected record shape %dx%d", record.NumRows(), record.NumCols())
	}
	if got := record.Schema().Field(2).Name; got != "x1:x2" {
		t.Errorf("unexpected field name %q", got)
	}

	record.Release()
	mem.AssertSize(t, 0)
}

func TestMatrixWriteParquetRoundTrip(t *testing.T) {
	m := testMatrix()

	var buf bytes.Buffer
	if err := m.WriteParquet(&buf); err != nil {
		t.Fatal(err)
	}

	r := bytes.NewReader(buf.Bytes())
	frame, err := dataset.ReadParquetFromReader(r, r.Size())
	if err != nil {
		t.Fatal(err)
	}

	if frame.NumRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", frame.NumRows())
	}
	// The parquet schema sorts fields alphabetically; values must still land
	// under their original names.
	for j, name := range m.Names {
		got, err := frame.Column(name)
		if err != nil {
			t.Fatalf("column %s: %v", name, err)
		}
		if !reflect.DeepEqual(got, m.Cols[j]) {
			t.Errorf("column %s: expected %v, got %v", name, m.Cols[j], got)
		}
	}
}
