package main

import (
	"os"

	"github.com/hbacelar8/tecarius/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
