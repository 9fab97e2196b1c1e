package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/ugit/pkg/repo"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			st, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case st.Branch != "":
				fmt.Fprintf(out, "On branch %s\n", st.Branch)
			case !st.Head.IsZero():
				fmt.Fprintf(out, "HEAD detached at %s\n", st.Head.Short())
			}
			if st.Branch != "" && st.Head.IsZero() {
				fmt.Fprintln(out, "No commits yet")
			}
			if !st.MergeHead.IsZero() {
				fmt.Fprintf(out, "Merging with %s\n", st.MergeHead.Short())
			}

			printChanges(out, "Changes to be committed:", st.Staged, color.New(color.FgGreen))
			printChanges(out, "Changes not staged for commit:", st.Unstaged, color.New(color.FgRed))
			return nil
		},
	}
}

func printChanges(out io.Writer, title string, changes []repo.FileChange, c *color.Color) {
	if len(changes) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", title)
	for _, ch := range changes {
		fmt.Fprintln(out, c.Sprintf("%12s: %s", ch.Action, ch.Path))
	}
}
