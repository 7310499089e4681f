// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command charityctl maintains the content document of a charity site
// without starting the web server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/olegiv/charity-cms/internal/config"
	"github.com/olegiv/charity-cms/internal/logging"
	"github.com/olegiv/charity-cms/internal/storage"
	"github.com/olegiv/charity-cms/internal/store"
	"github.com/olegiv/charity-cms/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds what the subcommands share. The store is opened lazily so that
// commands without storage access run without configuration.
type cli struct {
	logger *slog.Logger

	cfg     *config.Config
	backend storage.Backend
	store   *store.Store
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{}

	var verbose bool
	root := &cobra.Command{
		Use:   "charityctl",
		Short: "Maintain the charity site content document",
		Long: `charityctl reads the same CHARITY_* environment as the server and works
on the configured storage backend directly. Use it to export, import, back up
and restore the content document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			c.logger = logging.New(logging.Options{Level: level, Development: true, Output: errOut}, nil)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log storage activity")

	root.AddCommand(
		c.exportCmd(),
		c.importCmd(),
		c.resetCmd(),
		c.statsCmd(),
		c.schemaCmd(),
		c.backupsCmd(),
		c.hashPasswordCmd(),
		c.versionCmd(),
	)
	return root
}

// open connects to the configured backend and seeds an empty one.
func (c *cli) open(ctx context.Context) (*store.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := config.LoadStorage()
	if err != nil {
		return nil, err
	}
	backend, err := storage.Open(ctx, cfg.Storage(c.logger))
	if err != nil {
		return nil, err
	}

	seed := store.DefaultSeed()
	if cfg.SeedFile != "" {
		if seed, err = store.LoadSeedFile(cfg.SeedFile); err != nil {
			_ = backend.Close()
			return nil, err
		}
	}
	st := store.New(backend,
		store.WithKey(cfg.StorageKey),
		store.WithSeed(seed),
		store.WithLogger(c.logger),
	)
	if _, err := st.Initialize(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("initializing content: %w", err)
	}

	c.cfg, c.backend, c.store = cfg, backend, st
	return st, nil
}

func (c *cli) close() error {
	if c.backend == nil {
		return nil
	}
	err := c.backend.Close()
	c.backend, c.store = nil, nil
	return err
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}.Resolve()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "charityctl %s\n", info)
			return err
		},
	}
}
