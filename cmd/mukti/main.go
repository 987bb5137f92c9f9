package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shettydev/mukti-tui/internal/api"
	"github.com/shettydev/mukti-tui/internal/config"
	"github.com/shettydev/mukti-tui/internal/provider"
	"github.com/shettydev/mukti-tui/internal/session"
	"github.com/shettydev/mukti-tui/internal/store"
	"github.com/shettydev/mukti-tui/internal/tui"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "config.toml", "Path to config file")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		offline     = flag.Bool("offline", false, "Offline practice mode against a local LLM")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("Mukti %s\n", Version)
		os.Exit(0)
	}

	if err := initLogging(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	log.Info().Str("version", Version).Bool("offline", *offline).Msg("Starting Mukti")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	s, err := store.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer s.Close()

	var svc session.Service
	if *offline {
		p := provider.NewOpenAI(cfg.Provider)
		svc = session.NewLocal(s, p, cfg.Client.PageSize)
		log.Debug().Str("endpoint", cfg.Provider.Endpoint).Str("model", cfg.Provider.Model).Msg("Offline session ready")
	} else {
		client := api.NewClient(cfg.Server.BaseURL)
		svc = session.NewRemote(client, s, cfg.Server.BaseURL, cfg.Client.PageSize)
		log.Debug().Str("server", cfg.Server.BaseURL).Msg("Remote session ready")
	}
	defer svc.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	model := tui.New(svc, cfg.Client.MaxMessageLength, *offline)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-sigCh
		log.Info().Msg("Received shutdown signal")
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		log.Fatal().Err(err).Msg("TUI error")
	}

	log.Info().Msg("Mukti shutdown complete")
}

func initLogging(debug bool) error {
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	logPath := filepath.Join(dataDir, "mukti.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Log to file only; the TUI owns stdout and stderr.
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	return nil
}
