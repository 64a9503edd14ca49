package main

import (
	"os"

	"github.com/soldier14/quizdrill/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
