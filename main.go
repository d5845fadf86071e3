package main

import (
	"os"

	"github.com/lgmendez/diasync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
