package main

import (
	"flag"
	"fmt"
	"os"

	"divelog/internal/di"
	"divelog/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "", "path to the config directory")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug logging")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "divelog: %s\n", err)
		os.Exit(1)
	}
}
