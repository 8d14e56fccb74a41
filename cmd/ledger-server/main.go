package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shakti-network/shakti-ledger/pkg/app"
	"github.com/shakti-network/shakti-ledger/pkg/app/api"
	"github.com/shakti-network/shakti-ledger/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var server app.Runner = api.NewServer(cfg)
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server exited with error: %v\n", err)
		os.Exit(1)
	}
}
