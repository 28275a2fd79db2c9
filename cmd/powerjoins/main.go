// Command powerjoins prints the SQL the power join scopes build for the
// models of a definitions file.
//
// Usage:
//
//	powerjoins [--config file] join <Model> <path>
//	powerjoins [--config file] order <Model> <sort>
//	powerjoins [--config file] has <Model> <relation>
//	powerjoins config show
package main

import (
	"os"

	"github.com/kirschbaum-development/powerjoins/internal/cli"
)

func main() {
	os.Exit(cli.ExitCode(os.Stderr, rootCmd.Execute()))
}
