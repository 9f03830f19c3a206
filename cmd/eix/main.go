package main

import (
	"os"

	"github.com/wiredhikari/eix/internal/cli"
	"github.com/wiredhikari/eix/internal/output"
)

var version = "0.1.0"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		output.PrintError(os.Stderr, err.Error())
		os.Exit(cli.ExitCode(err))
	}
}
