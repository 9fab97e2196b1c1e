package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <commit>",
		Short: "Move the current branch to a commit",
		Long:  "Move HEAD (and the branch it points at) to a commit. The index and working tree are left alone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			h, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			if err := r.Reset(h); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "HEAD is now at %s\n", h.Short())
			return nil
		},
	}
}

func newUnstageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unstage [path]...",
		Short: "Restore index entries from HEAD",
		Long:  "Restore index entries from HEAD, dropping entries HEAD does not have. With no paths every entry is restored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			return r.Unstage(args...)
		},
	}
}
