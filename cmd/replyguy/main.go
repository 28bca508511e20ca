package main

import (
	"flag"
	"log"
	"replyguy/internal/di"
	"replyguy/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the yaml config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "mirror logs to the console")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		log.Fatalf("replyguy failed: %s", err)
	}
}
