// Command gnnpipe drives the graph-sampling toolchain over a dataset.
package main

import (
	"os"

	"github.com/yarri-oss/gnnpipe/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
