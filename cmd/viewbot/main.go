// Package main runs the video viewer bot: it loads the configuration, sets up
// logging, the rotators and the browser factory, and runs the URL list once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/viewbot/pkg/browser"
	"github.com/entrhq/viewbot/pkg/config"
	"github.com/entrhq/viewbot/pkg/egress"
	"github.com/entrhq/viewbot/pkg/identity"
	"github.com/entrhq/viewbot/pkg/logging"
	"github.com/entrhq/viewbot/pkg/runner"
	"github.com/entrhq/viewbot/pkg/viewer"
	"github.com/spf13/afero"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	ShowVersion bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("viewbot v%s\n", version)
		return
	}

	settings, err := config.Load(cli.ConfigFile)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	// Failures past this point are logged; the process still exits 0.
	run(ctx, settings)
}

func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.ConfigFile, "config", config.DefaultPath, "Path to configuration file (JSON or YAML)")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "viewbot - watches a list of videos in a controlled browser\n\n")
		fmt.Fprintf(os.Stderr, "Usage: viewbot [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	return cli
}

func run(ctx context.Context, settings *config.Settings) {
	// On error New falls back to console logging and has already said so.
	logger, _ := logging.New(logging.Options{
		Level: settings.LogLevel,
		Dir:   settings.LogDir,
		Name:  "viewbot",
	})
	defer func() { _ = logger.Close() }()

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	var source identity.Source
	if ds, err := identity.NewDatasetSource(rng); err != nil {
		logger.Warnf("User agent dataset unavailable: %v", err)
	} else {
		source = ds
	}

	opts, err := browser.OptionsFromSettings(settings.Browser)
	if err != nil {
		// Validate already checked the window size
		logger.Errorf("Invalid browser settings: %v", err)
		return
	}

	deps := runner.Deps{
		Settings:   settings,
		Sessions:   browser.NewFactory(opts, logger.Named("browser")),
		Viewer:     viewer.New(settings, rng, logger.Named("viewer")),
		Identities: identity.New(source, rng, logger.Named("identity")),
		Egress:     egress.New(settings.Proxies, rng, logger.Named("egress")),
		Logger:     logger.Named("runner"),
	}
	if settings.Report.Enabled {
		deps.Reports = runner.NewReportWriter(afero.NewOsFs(), settings.Report.OutputDir)
	}

	if _, err := runner.New(deps).Run(ctx); err != nil {
		logger.Errorf("Run ended early: %v", err)
	}
}
