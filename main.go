package main

import (
	"log"

	"github.com/flakewatch/flakewatch/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		log.Fatalf("Could not run the command, error %v", err)
	}
}
