package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/ytget/mucache/internal/config"
	"github.com/ytget/mucache/internal/doctor"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default $"+config.ConfigPathEnv+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		color.Red("configuration error: %v", err)
		os.Exit(1)
	}

	fmt.Println("Mucache diagnostics")
	findings := doctor.New(cfg).Run()
	doctor.Print(os.Stdout, findings)

	if doctor.Failed(findings) {
		color.Red("Some checks failed")
		os.Exit(1)
	}
	color.Green("All required checks passed")
}
