package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/ugit/pkg/repo"
)

func newBranchCmd(a *app) *cobra.Command {
	var deleteBranch string

	cmd := &cobra.Command{
		Use:   "branch [name [start]]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if deleteBranch != "" {
				if err := r.DeleteBranch(deleteBranch); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted branch %s\n", deleteBranch)
				return nil
			}

			if len(args) > 0 {
				start := repo.HeadRef
				if len(args) == 2 {
					start = args[1]
				}
				target, err := r.ResolveRevision(start)
				if err != nil {
					return err
				}
				if err := r.CreateBranch(args[0], target); err != nil {
					return err
				}
				fmt.Fprintf(out, "Branch %s created at %s\n", args[0], target.Short())
				return nil
			}

			branches, err := r.BranchNames()
			if err != nil {
				return err
			}
			current, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			for _, b := range branches {
				if b == current {
					fmt.Fprintf(out, "* %s\n", color.GreenString(b))
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	return cmd
}
