package main

import (
	"fmt"
	"os"

	"github.com/Fepozopo/tilt/pkg/cli"
	"github.com/Fepozopo/tilt/pkg/config"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := cli.RunCLI(cfg, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
