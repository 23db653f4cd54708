package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/version"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"prerender.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Build struct {
		Output string `short:"o" help:"Output directory override"`
	} `cmd:"" help:"Run one build cycle: render content bundles and inject fragments into documents"`

	Watch struct {
		Debounce time.Duration `help:"Settle time after a change burst before rebuilding" default:"500ms"`
	} `cmd:"" help:"Rebuild on content or document changes"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Verify struct {
		Dir string `short:"d" help:"Directory to verify (defaults to the configured output directory)"`
	} `cmd:"" help:"Check final documents for leftover placeholders"`
}

func main() {
	// A local .env may carry machine-specific paths; absence is fine.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI, kong.Vars{"version": version.Version})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "build":
		cfg := mustLoadConfig()
		if CLI.Build.Output != "" {
			cfg.OutputDir = CLI.Build.Output
		}
		if err := runBuild(signalContext(), cfg); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		cfg := mustLoadConfig()
		if err := runWatch(signalContext(), cfg, CLI.Watch.Debounce); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "verify":
		cfg := mustLoadConfig()
		dir := CLI.Verify.Dir
		if dir == "" {
			dir = cfg.OutputDir
		}
		issues, err := runVerify(dir, cfg.Placeholder)
		if err != nil {
			slog.Error("Verify failed", "error", err)
			os.Exit(1)
		}
		if issues > 0 {
			os.Exit(1)
		}
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
}

func mustLoadConfig() *config.FileConfig {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		slog.Info("Shutting down")
		cancel()
	}()
	return ctx
}
