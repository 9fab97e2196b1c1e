package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/ugit/pkg/repo"
)

func newReflogCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reflog [ref]",
		Short: "Show reference update history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			ref := repo.HeadRef
			if len(args) == 1 {
				ref = args[0]
			}
			entries, err := r.Refs.Reflog(ref, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				ts := e.Time.UTC().Format(time.RFC3339)
				fmt.Fprintf(out, "%s %s %s %s\n", color.YellowString(e.NewHash.Short()), ts, repo.ShortRefName(e.Ref), e.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum entries to show")
	return cmd
}
