package main

import (
	"os"

	"github.com/helpdesk-tools/ticket-triage/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
