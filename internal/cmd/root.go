// Package cmd implements the formula command-line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/statkit/formula"
)

var rootVerbose bool

var rootCmd = &cobra.Command{
	Use:   "formula",
	Short: "Compile R-style formulas and build design matrices",
	Long: `formula compiles model formulas like "y ~ 1 + c(species) + x1:x2"
and materializes them against CSV or Parquet data files.

The left side of "~" names the response column; the right side describes
the explanatory terms. Supported term forms include interactions (x1:x2),
crossings (x1*x2), categorical expansion (c(x)), literal powers (I(x^2)),
orthogonal-free polynomials (poly(x, 3)) and elementwise transforms such
as log(x) and sqrt(x).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if rootVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	Version: formula.Version(),
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
