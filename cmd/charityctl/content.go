// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/olegiv/charity-cms/internal/model"
)

func (c *cli) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the content document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			return st.Export(cmd.Context(), w)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write instead of stdout")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the content document with a JSON export",
		Long:  `Replace the content document with FILE, or stdin when FILE is "-". A backup of the current document is taken first.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("import replaces all site content; pass --yes to confirm")
			}
			st, err := c.open(cmd.Context())
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening %s: %w", args[0], err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			key, err := st.Backup(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.Import(cmd.Context(), r); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %s (previous content saved as %s)\n", args[0], key)
			return err
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm replacing the document")
	return cmd
}

func (c *cli) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the content document with the seed content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset discards all site content and submissions; pass --yes to confirm")
			}
			st, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			key, err := st.Backup(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.Reset(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "content reset (previous content saved as %s)\n", key)
			return err
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm discarding the document")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			s, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintf(tw, "Donations\t%d\t%.2f\n", s.DonationCount, s.TotalDonations)
			_, _ = fmt.Fprintf(tw, "Volunteers\t%d\t%d new\n", s.Volunteers, s.NewVolunteers)
			_, _ = fmt.Fprintf(tw, "Programs\t%d\t%d active\n", s.Programs, s.ActivePrograms)
			_, _ = fmt.Fprintf(tw, "Enquiries pending\t%d\t\n", s.PendingInquiries)
			_, _ = fmt.Fprintf(tw, "Blog posts\t%d\t\n", s.BlogPosts)
			_, _ = fmt.Fprintf(tw, "Events\t%d\t\n", s.Events)
			return tw.Flush()
		},
	}
}

func (c *cli) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the content document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(model.Schema())
		},
	}
}
