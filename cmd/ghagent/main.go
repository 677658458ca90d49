/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Command ghagent drives a model through GitHub repository tasks.
//
//	ghagent tools                 list every tool the agent can call
//	ghagent run [instruction...]  run instructions (and TASK_FILE) in order
//	ghagent upload <path>         upload one local file to the upload branch
//
// Configuration comes from the environment; see config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
)

const usage = `usage: ghagent <command> [args]

commands:
  tools                 list the tools available to the agent
  run [instruction...]  run instructions, then the tasks in TASK_FILE
  upload <path>         upload a local file to the upload branch`

var errUsage = errors.New(usage)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], envconfig.OsLookuper(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		clog.FatalContextf(ctx, "ghagent: %v", err)
	}
}

func run(ctx context.Context, args []string, lookuper envconfig.Lookuper, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	if args[0] == "tools" {
		return printTools(stdout)
	}

	cfg, err := loadConfig(ctx, lookuper)
	if err != nil {
		return err
	}
	logger := clog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	ctx = clog.WithLogger(ctx, logger)

	if cfg.MetricsPort != 0 {
		stop := serveMetrics(ctx, cfg.MetricsPort)
		defer stop()
	}

	switch args[0] {
	case "run":
		return runTasks(ctx, cfg, args[1:], stdout)
	case "upload":
		if len(args) != 2 {
			return errUsage
		}
		return upload(ctx, cfg, args[1], stdout)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}
