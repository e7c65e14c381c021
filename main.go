package main

import (
	"os"

	"github.com/TFMV/savefmt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
