// ABOUTME: Entry point for healthlog CLI.
// ABOUTME: Invokes the root Cobra command.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Execute builds the command tree and runs it against os.Args.
func Execute() error {
	a := &app{}
	defer a.close()
	return newRootCmd(a).Execute()
}
