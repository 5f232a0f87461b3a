package formula_test

import (
	"reflect"
	"testing"

	"github.com/statkit/formula"
	"github.com/statkit/formula/pkg/dataset"
	"github.com/statkit/formula/pkg/evaluator"
	"github.com/statkit/formula/pkg/parser"
	"github.com/statkit/formula/pkg/types"
)

func irisFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	f := dataset.NewFrame()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(f.AddNumeric("Sepal.Length", []float64{5.1, 4.9, 6.3, 5.8}))
	must(f.AddNumeric("Petal.Width", []float64{0.2, 0.2, 1.5, 1.2}))
	must(f.AddCategorical("Species", []string{"setosa", "setosa", "versicolor", "versicolor"}))
	return f
}

func TestCompile(t *testing.T) {
	f, err := formula.Compile("y ~ 1 + x1 + x2:x3")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"x1", "x2:x3"}
	if got := f.TermNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected terms %v, got %v", want, got)
	}
}

func TestCompileError(t *testing.T) {
	_, err := formula.Compile("y ~ frobnicate(x)")
	if !types.IsUnknownTransform(err) {
		t.Fatalf("expected unknown-transform error, got %v", err)
	}
}

func TestCompileWithOptions(t *testing.T) {
	_, err := formula.Compile("y ~ ((((x))))", parser.WithMaxDepth(2))
	if err == nil {
		t.Fatal("expected depth limit error")
	}
}

func TestMustCompile(t *testing.T) {
	f := formula.MustCompile("y ~ x")
	if f == nil {
		t.Fatal("expected formula")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid formula")
		}
	}()
	formula.MustCompile("not a formula +")
}

func TestCompileCached(t *testing.T) {
	f1, err := formula.CompileCached("y ~ Sepal.Length + c(Species)")
	if err != nil {
		t.Fatal(err)
	}
	f2, err := formula.CompileCached("y ~ Sepal.Length + c(Species)")
	if err != nil {
		t.Fatal(err)
	}
	if f1 != f2 {
		t.Error("expected cached compile to return the same pointer")
	}
}

func TestMaterialize(t *testing.T) {
	f := formula.MustCompile("Sepal.Length ~ 1 + Petal.Width + c(Species)")

	X, y, err := formula.Materialize(f, irisFrame(t))
	if err != nil {
		t.Fatal(err)
	}

	wantNames := []string{evaluator.InterceptName, "Petal.Width", "c(Species)[versicolor]"}
	if !reflect.DeepEqual(X.Names, wantNames) {
		t.Fatalf("unexpected columns %v", X.Names)
	}
	if !reflect.DeepEqual(y, []float64{5.1, 4.9, 6.3, 5.8}) {
		t.Errorf("unexpected response %v", y)
	}
	if !reflect.DeepEqual(X.Col(2), []float64{0, 0, 1, 1}) {
		t.Errorf("unexpected dummy column %v", X.Col(2))
	}
}

func TestEval(t *testing.T) {
	X, _, err := formula.Eval("Sepal.Length ~ 0 + Petal.Width", irisFrame(t),
		evaluator.WithParallelism(2))
	if err != nil {
		t.Fatal(err)
	}
	if X.NumCols() != 1 || X.Rows != 4 {
		t.Fatalf("unexpected shape %dx%d", X.Rows, X.NumCols())
	}
}

func TestEvalCompileError(t *testing.T) {
	_, _, err := formula.Eval("~", irisFrame(t))
	if err == nil {
		t.Fatal("expected compile error")
	}
}

// Reusing one compiled formula across data sources is the point of the
// compile/materialize split: the same terms apply to train and test.
func TestMaterializeAcrossSources(t *testing.T) {
	f := formula.MustCompile("~ 1 + x")

	train := dataset.NewFrame()
	if err := train.AddNumeric("x", []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	test := dataset.NewFrame()
	if err := test.AddNumeric("x", []float64{10, 20}); err != nil {
		t.Fatal(err)
	}

	Xtrain, _, err := formula.Materialize(f, train)
	if err != nil {
		t.Fatal(err)
	}
	Xtest, _, err := formula.Materialize(f, test)
	if err != nil {
		t.Fatal(err)
	}

	if Xtrain.Rows != 3 || Xtest.Rows != 2 {
		t.Errorf("unexpected row counts %d and %d", Xtrain.Rows, Xtest.Rows)
	}
	if !reflect.DeepEqual(Xtrain.Names, Xtest.Names) {
		t.Errorf("column names differ across sources: %v vs %v", Xtrain.Names, Xtest.Names)
	}
}
