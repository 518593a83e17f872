// Command auditlens answers provenance questions over an audited shop
// database. See `auditlens --help`.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/auditlens/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
