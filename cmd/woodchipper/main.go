package main

import (
	"os"

	"github.com/example/woodchipper/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
