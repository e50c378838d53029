// Package main is the entry point for the esmcat CLI binary.
package main

import (
	"os"

	cli "esmcat/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
