package main

import (
	"fmt"
	"os"

	"github.com/adamavenir/agentjob/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		if code, reported := command.ExitStatus(err); reported {
			os.Exit(code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
