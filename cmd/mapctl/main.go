// Command mapctl inspects layered configuration and the metadata store.
package main

import (
	"os"

	"github.com/mesh-intelligence/mappings/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
