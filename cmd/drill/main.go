// Package main provides the entry point for the drill CLI.
package main

import (
	"github.com/phrazzld/drill-api/internal/cli"
)

func main() {
	cli.Execute()
}
