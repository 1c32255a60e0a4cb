// Command alumdexctl works on the record store directly: bulk imports,
// one-shot searches and option listings without running the API server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
