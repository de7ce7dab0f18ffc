// Command highlight marks the viewer's name and watched identifiers in
// HTML pages.
package main

import (
	"os"

	"github.com/custodia-labs/highlight/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
