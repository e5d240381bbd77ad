package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atomicstack/navstate/internal/format/outline"
	"github.com/atomicstack/navstate/internal/snapshot"
)

// =============================================================================
// SNAPSHOT COMMANDS
// =============================================================================

var errStateDirRequired = errors.New("--state-dir is required")

type snapshotOptions struct {
	stateDir string
	raw      bool
	keys     bool
}

func newSnapshotCmd() *cobra.Command {
	opts := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "List, show and remove saved sessions",
	}
	cmd.PersistentFlags().StringVar(&opts.stateDir, "state-dir", "", "snapshot database directory")

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List saved session names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts, func(ctx context.Context, s *snapshot.Store) error {
				return listSnapshots(ctx, cmd, s)
			})
		},
	}
	show := &cobra.Command{
		Use:   "show <session>",
		Short: "Print a saved session as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts, func(ctx context.Context, s *snapshot.Store) error {
				return showSnapshot(ctx, cmd, s, opts, args[0])
			})
		},
	}
	show.Flags().BoolVar(&opts.raw, "raw", false, "print the stored JSON instead of the tree")
	show.Flags().BoolVar(&opts.keys, "keys", false, "show node keys")
	rm := &cobra.Command{
		Use:   "rm <session>...",
		Short: "Delete saved sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), opts, func(ctx context.Context, s *snapshot.Store) error {
				return removeSnapshots(ctx, cmd, s, args)
			})
		},
	}
	cmd.AddCommand(ls, show, rm)
	return cmd
}

func withStore(ctx context.Context, opts *snapshotOptions, fn func(context.Context, *snapshot.Store) error) error {
	if opts.stateDir == "" {
		return errStateDirRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := snapshot.Open(snapshot.Config{Path: opts.stateDir})
	if err != nil {
		return err
	}
	err = fn(ctx, s)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	return err
}

func listSnapshots(ctx context.Context, cmd *cobra.Command, s *snapshot.Store) error {
	names, err := s.Names(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "no saved sessions")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func showSnapshot(ctx context.Context, cmd *cobra.Command, s *snapshot.Store, opts *snapshotOptions, name string) error {
	out := cmd.OutOrStdout()
	if opts.raw {
		data, err := s.Raw(ctx, name)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("snapshot %s: %w", name, err)
		}
		fmt.Fprintln(out, buf.String())
		return nil
	}
	root, err := s.Load(ctx, name)
	if err != nil {
		return err
	}
	for _, line := range outline.Render(root, outline.Options{Keys: opts.keys}) {
		fmt.Fprintln(out, line)
	}
	return nil
}

// removeSnapshots deletes every name it can and reports the rest together.
func removeSnapshots(ctx context.Context, cmd *cobra.Command, s *snapshot.Store, names []string) error {
	var errs []error
	for _, name := range names {
		if err := s.Delete(ctx, name); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
	}
	return errors.Join(errs...)
}
