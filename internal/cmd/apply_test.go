package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/statkit/formula/pkg/evaluator"
)

func TestReadFrameDispatch(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(csvPath, []byte("x,g\n1,a\n2,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	frame, err := readFrame(csvPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	if frame.NumRows() != 2 {
		t.Errorf("expected 2 rows, got %d", frame.NumRows())
	}

	if _, err := readFrame(filepath.Join(dir, "data.json"), nil); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestReadFrameForcedCategorical(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(csvPath, []byte("region,x\n1,0.5\n2,0.6\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	frame, err := readFrame(csvPath, []string{"region"})
	if err != nil {
		t.Fatal(err)
	}
	if !frame.IsCategorical("region") {
		t.Error("expected region forced categorical")
	}
}

func TestPrependColumn(t *testing.T) {
	m := &evaluator.Matrix{
		Names: []string{"x"},
		Cols:  [][]float64{{1, 2}},
		Rows:  2,
	}
	out := prependColumn(m, "y", []float64{10, 20})

	if !reflect.DeepEqual(out.Names, []string{"y", "x"}) {
		t.Errorf("unexpected names %v", out.Names)
	}
	if !reflect.DeepEqual(out.Col(0), []float64{10, 20}) {
		t.Errorf("unexpected response column %v", out.Col(0))
	}
}

func TestWriteMatrixToFile(t *testing.T) {
	m := &evaluator.Matrix{
		Names: []string{"x"},
		Cols:  [][]float64{{1.5, 2.5}},
		Rows:  2,
	}

	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.csv")
	if err := writeMatrix(m, outPath); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); !strings.HasPrefix(got, "x\n1.5\n2.5\n") {
		t.Errorf("unexpected output:\n%s", got)
	}
}
