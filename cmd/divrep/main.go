package main

import (
	"os"

	"github.com/divrep/divrep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
