package main

import (
	"os"

	"github.com/abhisek/examdeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
