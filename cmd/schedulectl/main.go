// Command schedulectl talks to the meeting dialogue from a terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
