package main

import (
	"os"

	"github.com/zomailer/zomailer-cli/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
