package main

import (
	"os"

	"github.com/Makepad-fr/dod/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
