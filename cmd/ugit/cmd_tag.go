package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/ugit/pkg/repo"
)

func newTagCmd(a *app) *cobra.Command {
	var deleteTag string

	cmd := &cobra.Command{
		Use:   "tag [name [revision]]",
		Short: "List, create, or delete tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if deleteTag != "" {
				if err := r.DeleteTag(deleteTag); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted tag %s\n", deleteTag)
				return nil
			}

			if len(args) > 0 {
				rev := repo.HeadRef
				if len(args) == 2 {
					rev = args[1]
				}
				target, err := r.ResolveRevision(rev)
				if err != nil {
					return err
				}
				return r.CreateTag(args[0], target)
			}

			tags, err := r.TagNames()
			if err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Fprintln(out, t)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	return cmd
}
