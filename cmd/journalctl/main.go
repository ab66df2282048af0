package main

import (
	"fmt"
	"os"

	"github.com/jrsteele09/journal-session/cmd/journalctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
