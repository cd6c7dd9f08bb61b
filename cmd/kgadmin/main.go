// Package main provides the kgadmin knowledge graph client.
package main

import (
	"os"

	"github.com/ai-bank/kgadmin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
