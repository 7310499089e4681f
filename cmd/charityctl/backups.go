// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) backupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "Manage backups of the content document",
	}
	cmd.AddCommand(c.backupsListCmd(), c.backupsCreateCmd(), c.backupsRestoreCmd(), c.backupsPruneCmd())
	return cmd
}

func (c *cli) backupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			keys, err := st.Backups(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), k); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *cli) backupsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Back up the content document now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			key, err := st.Backup(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}

func (c *cli) backupsRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore KEY",
		Short: "Replace the content document with a backup",
		Long:  `Replace the content document with backup KEY. "latest" restores the newest backup.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			key := args[0]
			if key == "latest" {
				keys, err := st.Backups(cmd.Context())
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					return errors.New("there are no backups")
				}
				key = keys[len(keys)-1]
			} else if !strings.HasPrefix(key, st.BackupPrefix()) {
				keys, err := st.Backups(cmd.Context())
				if err != nil {
					return err
				}
				// Accept the timestamp without the prefix.
				if full := st.BackupPrefix() + key; slices.Contains(keys, full) {
					key = full
				}
			}
			if err := st.RestoreBackup(cmd.Context(), key); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", key)
			return err
		},
	}
}

func (c *cli) backupsPruneCmd() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("keep") {
				keep = c.cfg.BackupKeep
			}
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1, got %d", keep)
			}
			n, err := st.PruneBackups(cmd.Context(), keep)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d backups\n", n)
			return err
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 7, "number of backups to keep (default CHARITY_BACKUP_KEEP)")
	return cmd
}
