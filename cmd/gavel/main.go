// cmd/gavel/main.go
//
// This is the entry point for the Gavel terminal client.
//
// Flow:
// 1. Load .env (the simulator service is dotenv-configured, so deployments
//    usually share one file; GAVEL_BACKEND_URL may live there)
// 2. Initialize the .gavel directory and read config.yaml
// 3. Wire the API client, journey log, and workflow controller
// 4. Launch the TUI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/yourusername/gavel/internal/api"
	"github.com/yourusername/gavel/internal/config"
	"github.com/yourusername/gavel/internal/logbook"
	"github.com/yourusername/gavel/internal/session"
	"github.com/yourusername/gavel/internal/tui"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	// Missing .env is fine; the config file and defaults cover everything.
	_ = godotenv.Load()

	if err := config.InitGavelDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .gavel directory: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// The journey log is best-effort; the client works without it.
	lb, err := logbook.New(cfg.JourneyLogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: journey log unavailable: %v\n", err)
		lb = nil
	}
	defer lb.Close()

	client := api.NewClient(cfg.BackendURL(), cfg.RequestTimeout())
	controller := session.NewController(client, lb)

	p := tea.NewProgram(
		tui.NewApp(cfg, controller, lb),
		tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
