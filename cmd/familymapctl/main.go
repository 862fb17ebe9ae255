// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Command familymapctl runs administrative tasks against the Familymap
// database: admin accounts, JSONL imports, enrichment and geocoding.
//
// It reads the same configuration as the server (.env, config.yaml,
// environment). DuckDB allows one writer, so stop the server before running
// commands that write against the same database file.
//
//	familymapctl create-admin --username curator --email curator@example.com
//	familymapctl import-jsonl modrykonik 2025-06
//	familymapctl enrich 12 13 14 --workers 4 --city Bratislava
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tomtom215/familymap/internal/app"
	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := newCLI(os.Stdin, os.Stdout, os.Stderr)
	if err := c.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		c.close()
		stop()
		os.Exit(1)
	}
	c.close()
}

// cli carries the IO streams and lazily built components shared by all
// subcommands.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	reader *bufio.Reader

	// readPassword reads a line without echo. Tests replace it.
	readPassword func(prompt string) (string, error)

	// loadConfig and build are replaced in tests.
	loadConfig func() (*config.Config, error)
	build      func(*config.Config) (*app.Components, error)

	cfg   *config.Config
	comps *app.Components
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	c := &cli{
		in:         in,
		out:        out,
		errOut:     errOut,
		loadConfig: loadConfig,
		build: func(cfg *config.Config) (*app.Components, error) {
			return app.New(cfg, app.WithoutQueue())
		},
	}
	c.readPassword = c.terminalPassword
	return c
}

func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}
	return config.Load()
}

// components loads configuration and wires services on first use.
func (c *cli) components() (*app.Components, error) {
	if c.comps != nil {
		return c.comps, nil
	}
	if c.cfg == nil {
		cfg, err := c.loadConfig()
		if err != nil {
			return nil, err
		}
		c.cfg = cfg
	}
	comps, err := c.build(c.cfg)
	if err != nil {
		return nil, err
	}
	c.comps = comps
	return comps, nil
}

func (c *cli) close() {
	if c.comps != nil {
		c.comps.Close()
		c.comps = nil
	}
}

func (c *cli) rootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "familymapctl",
		Short:         "Familymap administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logging.Config{Level: logLevel, Format: "console", Output: c.errOut, App: "familymapctl"})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.AddCommand(
		c.createAdminCmd(),
		c.promoteAdminCmd(),
		c.demoteAdminCmd(),
		c.listAdminsCmd(),
		c.importJSONLCmd(),
		c.enrichCmd(),
		c.geocodeCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(c.out, "familymapctl version %s\n", version)
			},
		},
	)
	return root
}
