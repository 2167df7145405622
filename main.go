package main

import (
	"os"

	"github.com/seismohq/seismo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
