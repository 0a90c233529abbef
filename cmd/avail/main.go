package main

import (
	"os"

	"github.com/avail-cli/avail/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
