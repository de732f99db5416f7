// Command toolbelt is an MCP server exposing a small set of tools, one
// static resource, and one prompt template over stdio.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hanq-io/toolbelt/internal/config"
	"github.com/hanq-io/toolbelt/internal/dispatch"
	"github.com/hanq-io/toolbelt/internal/inference"
	"github.com/hanq-io/toolbelt/internal/logctx"
	"github.com/hanq-io/toolbelt/internal/prompts"
	"github.com/hanq-io/toolbelt/internal/registry"
	"github.com/hanq-io/toolbelt/internal/resources"
	"github.com/hanq-io/toolbelt/internal/stdio"
	"github.com/hanq-io/toolbelt/internal/tools"
	"github.com/hanq-io/toolbelt/mcp"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "toolbelt:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	// Stdout carries the protocol; logs go to stderr.
	log := slog.New(logctx.Handler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}),
	})

	if cfg.HFAPIToken == "" {
		log.Warn("HF_API_TOKEN is not set; generateImage calls will fail until it is configured")
	}

	gen := inference.NewClient(cfg.ModelURL, cfg.HFAPIToken,
		inference.WithTimeout(cfg.HTTPTimeout),
		inference.WithLogger(log))

	reg := registry.New()
	// Registration happens entirely before serving; any failure here is a
	// programming error and halts startup.
	defs := []error{
		reg.RegisterTool(tools.Greeting()),
		reg.RegisterTool(tools.Calc()),
		reg.RegisterTool(tools.CurrentTime()),
		reg.RegisterTool(tools.GenerateImage(gen)),
		reg.RegisterResource(resources.ServerStatus()),
		reg.RegisterPrompt(prompts.CodeReview()),
	}
	if err := errors.Join(defs...); err != nil {
		return fmt.Errorf("register capabilities: %w", err)
	}

	d := dispatch.New(reg,
		dispatch.WithServerInfo(mcp.ImplementationInfo{Name: "toolbelt", Version: version}),
		dispatch.WithInstructions("General-purpose demo tools: greetings, arithmetic, timezones, and image generation."),
		dispatch.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("serving stdio", slog.String("version", version))
	if err := stdio.NewHandler(d, stdio.WithLogger(log)).Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
