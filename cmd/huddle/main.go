package main

import (
	"fmt"
	"os"

	"huddle/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command.AppName, err)
		os.Exit(1)
	}
}
