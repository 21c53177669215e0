// Command catp mirrors the output of a running process.
//
// Usage:
//
//	catp [--fd N]... [--sink FD=PATH]... [-v] PID
package main

import (
	"os"

	"github.com/criyle/go-catp/cmd/catp/cli"
)

func main() {
	os.Exit(cli.Execute())
}
