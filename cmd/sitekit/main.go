package main

import (
	"os"

	"github.com/sitekit/sitekit/cmd/sitekit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
