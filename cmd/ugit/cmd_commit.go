package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCommitCmd(a *app) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the index as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return errors.New("a commit message is required (-m)")
			}
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			h, err := r.Commit(message)
			if err != nil {
				return err
			}
			branch, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			if branch == "" {
				branch = "detached HEAD"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, color.YellowString(h.Short()), firstLine(message))
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}
