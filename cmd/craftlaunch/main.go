package main

import (
	"os"

	"github.com/bianoble/craftlaunch/cmd/craftlaunch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
