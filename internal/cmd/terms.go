package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statkit/formula"
	"github.com/statkit/formula/pkg/evaluator"
)

var termsCmd = &cobra.Command{
	Use:   "terms <formula>",
	Short: "Print the expanded term list of a formula",
	Long: `Compile a formula and print its expanded, deduplicated term list, one
term per line, in the order the design matrix columns will appear.

Categorical factors (c(x)) and polynomials (poly(x, k)) expand to
multiple matrix columns at evaluation time; terms shows one line per
term, not per column.

Example:
  formula terms "y ~ a*b + poly(x, 2)"`,
	Args: cobra.ExactArgs(1),
	RunE: runTerms,
}

func init() {
	rootCmd.AddCommand(termsCmd)
}

func runTerms(cmd *cobra.Command, args []string) error {
	f, err := formula.Compile(args[0])
	if err != nil {
		return err
	}
	if resp := f.Response(); resp != nil {
		fmt.Printf("response: %s\n", resp.ColumnName())
	}
	if f.Intercept() {
		fmt.Println(evaluator.InterceptName)
	}
	for _, name := range f.TermNames() {
		fmt.Println(name)
	}
	return nil
}
