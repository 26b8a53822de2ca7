package main

import (
	"os"

	"github.com/novelhub-dev/novelhub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
