package main

import (
	"os"

	"github.com/gnosisguild/mech-go/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
