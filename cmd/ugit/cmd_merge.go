package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newMergeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <revision>",
		Short: "Merge a commit into HEAD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			incoming, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			res, err := r.Merge(cmd.Context(), incoming)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.FastForward {
				fmt.Fprintf(out, "Fast-forward merge to %s\n", incoming.Short())
				return nil
			}
			for _, p := range res.Report.ConflictedPaths() {
				fmt.Fprintln(out, color.RedString("CONFLICT: %s", p))
			}
			if res.Report.Conflicts > 0 {
				fmt.Fprintf(out, "Merged with %d conflicting file(s); fix them, add and commit\n", res.Report.Conflicts)
				return nil
			}
			fmt.Fprintln(out, "Merged in working tree")
			fmt.Fprintln(out, "Please commit")
			return nil
		},
	}
}

func newMergeBaseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge-base <revision> <revision>",
		Short: "Find a common ancestor of two commits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			first, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			second, err := r.ResolveRevision(args[1])
			if err != nil {
				return err
			}
			base, err := r.MergeBase(first, second)
			if err != nil {
				return err
			}
			if base.IsZero() {
				return fmt.Errorf("no common ancestor of %s and %s", args[0], args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), base)
			return nil
		},
	}
}
