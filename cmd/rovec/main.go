package main

import (
	"os"

	"github.com/rovelang/go-rove/cmd/rovec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
