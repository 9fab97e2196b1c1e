package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch|revision>",
		Short: "Switch HEAD and the working tree to a branch or commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			if err := r.Checkout(args[0]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if r.IsBranch(args[0]) {
				fmt.Fprintf(out, "Switched to branch '%s'\n", args[0])
				return nil
			}
			head, err := r.HeadCommit()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "HEAD is now at %s\n", head.Short())
			return nil
		},
	}
}
