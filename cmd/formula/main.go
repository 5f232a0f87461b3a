// formula is a CLI for compiling R-style formulas and building design
// matrices from tabular data files.
package main

import (
	"os"

	"github.com/statkit/formula/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
