// lemonfeed polls status blocks and feeds the composed line to lemonbar.
//
// Usage:
//
//	lemonfeed [flags]
//
// Flags:
//
//	-config string  Path to the YAML config (default: $XDG_CONFIG_HOME/lemonfeed/config.yaml)
//	-feed           Print the feed to stdout instead of starting lemonbar
//	-preview        Show the feed in the terminal
//	-verbose        Enable debug logging
//	-version        Print version and exit
//
// SIGUSR1 forces every block to poll and the line to be pushed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	var (
		configPath  = flag.String("config", "", "Path to the YAML config file")
		feedOnly    = flag.Bool("feed", false, "Only print feed data (don't start lemonbar)")
		preview     = flag.Bool("preview", false, "Preview the feed in the terminal")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("lemonfeed %s\n", version)
		return
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	// stdout may carry the feed, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Path == "" {
		logger.Info("no config file found, using built-in blocks")
	}

	mode := modeLemonbar
	switch {
	case *preview:
		mode = modePreview
	case *feedOnly:
		mode = modeFeed
	}

	if err := run(cfg, mode, logger); err != nil {
		logger.Error("feed stopped", "error", err)
		os.Exit(1)
	}
}

type sinkMode int

const (
	modeLemonbar sinkMode = iota
	modeFeed
	modePreview
)

func run(cfg *Config, mode sinkMode, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := Deps{Logger: logger}
	hypr, err := NewHyprlandClient(logger)
	if err != nil {
		logger.Debug("hyprland unavailable", "error", err)
	} else {
		deps.Hyprland = hypr
	}

	layout, errs := BuildLayout(cfg.Blocks, deps)
	for _, err := range errs {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			logger.Warn("skipping block", "block", cerr.Block, "error", cerr.Err)
			continue
		}
		logger.Warn("skipping block", "error", err)
	}

	bar := NewBar(layout, seconds(cfg.Lemonbar.UpdateInterval), seconds(cfg.Lemonbar.Tick), logger)

	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	defer signal.Stop(usr1)
	go func() {
		for {
			select {
			case <-usr1:
				logger.Debug("refresh requested")
				bar.Refresh()
			case <-ctx.Done():
				return
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	if refreshers := workspaceRefreshers(bar); deps.Hyprland != nil && len(refreshers) > 0 {
		events := NewHyprlandEventHandler(deps.Hyprland)
		events.refreshOnWorkspaceEvents(refreshers)
		g.Go(func() error {
			// Workspace blocks still poll on their interval without events.
			if err := events.Run(gctx); err != nil {
				logger.Warn("hyprland events unavailable", "error", err)
			}
			return nil
		})
	}

	switch mode {
	case modePreview:
		p := tea.NewProgram(initialModel(cfg.Lemonbar.Colors), tea.WithAltScreen())
		feedCtx, cancelFeed := context.WithCancel(gctx)
		g.Go(func() error {
			return bar.Run(feedCtx, NewPreviewSink(p))
		})
		_, perr := p.Run()
		perr = previewExit(perr)
		cancelFeed()
		stop()
		if err := g.Wait(); err != nil {
			return err
		}
		return perr

	case modeFeed:
		g.Go(func() error {
			return bar.Run(gctx, NewWriterSink(os.Stdout))
		})

	default:
		sink, err := StartLemonbar(cfg.Lemonbar.Path, lemonbarArgs(cfg.Lemonbar), logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return bar.Run(gctx, sink)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("closing")
	return nil
}

// previewExit treats an interrupted preview as a clean shutdown.
func previewExit(err error) error {
	if errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

// workspaceRefreshers returns the blocks that should poll again on
// compositor workspace events.
func workspaceRefreshers(bar *Bar) []Refresher {
	var out []Refresher
	for _, b := range bar.Blocks() {
		if p, ok := b.(*PolledBlock); ok && p.Name() == "WorkspacesDots" {
			out = append(out, p)
		}
	}
	return out
}
