// Command ai-process-blueprint manages workflow templates: named markdown
// documents stored as plain files with YAML frontmatter. It serves them over
// an HTTP API, exposes them to AI agents via MCP, and offers a headless CLI
// plus an interactive browser.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/NewAITees/ai-process-blueprint/internal/api"
	"github.com/NewAITees/ai-process-blueprint/internal/cli"
	"github.com/NewAITees/ai-process-blueprint/internal/config"
	"github.com/NewAITees/ai-process-blueprint/internal/mcpserver"
	"github.com/NewAITees/ai-process-blueprint/internal/service"
	"github.com/NewAITees/ai-process-blueprint/internal/storage"
	"github.com/NewAITees/ai-process-blueprint/internal/tui"
)

var version = "0.1.0"

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "ai-process-blueprint: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	port := flag.Int("port", 0, "Port for the HTTP API (overrides PORT)")
	templateDir := flag.String("dir", "", "Template storage directory (overrides TEMPLATE_DIR)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	verbose := flag.Bool("verbose", false, "Verbose error output for CLI commands")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *templateDir != "" {
		cfg.TemplateDir = *templateDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	args := flag.Args()
	command := "serve"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	// The MCP server owns stdout for protocol frames, so logs always go to
	// stderr.
	initLogger(cfg.LogLevel, cfg.Debug)

	switch command {
	case "version":
		fmt.Printf("ai-process-blueprint %s\n", version)
		return nil
	case "help":
		return cli.NewCLI(nil, false).ExecuteCommand(context.Background(), []string{"help"})
	}

	repo, err := storage.NewRepository(cfg.TemplateDir)
	if err != nil {
		return err
	}
	svc := service.New(repo)

	switch command {
	case "serve":
		return runServe(cfg, svc)
	case "mcp":
		return runMCP(cfg, svc)
	case "browse":
		return tui.Run(svc)
	default:
		return cli.NewCLI(svc, *verbose).ExecuteCommand(context.Background(), append([]string{command}, args...))
	}
}

// runServe starts the HTTP API and blocks until a shutdown signal arrives.
func runServe(cfg *config.Config, svc *service.Service) error {
	if !cfg.EnableHTTP {
		return fmt.Errorf("HTTP interface is disabled (ENABLE_HTTP=false); nothing to serve")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watchExecutable(ctx, stop); err != nil {
		slog.Warn("Executable watch unavailable", "err", err)
	}

	server := api.NewServer(svc, cfg.Port, cfg.Debug)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.Info("Server stopped")
	}
	return nil
}

// runMCP serves the MCP protocol on stdin/stdout until the peer disconnects
// or a shutdown signal arrives.
func runMCP(cfg *config.Config, svc *service.Service) error {
	if !cfg.EnableMCP {
		return fmt.Errorf("MCP interface is disabled (ENABLE_MCP=false)")
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx, svc, version)
}

// initLogger installs a tinted stderr logger as the process default.
func initLogger(level string, debug bool) {
	ll := &slog.LevelVar{}
	switch level {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		ll.Set(slog.LevelInfo)
	}
	if debug {
		ll.Set(slog.LevelDebug)
	}

	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)
}

// watchExecutable watches the running binary for modifications and calls stop
// to trigger graceful shutdown when it changes. This enables seamless
// restarts during development.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}
