package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/ugit/pkg/object"
	"github.com/odvcencio/ugit/pkg/repo"
)

func newLogCmd(a *app) *cobra.Command {
	var maxCount int

	cmd := &cobra.Command{
		Use:   "log [revision]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			rev := repo.HeadRef
			if len(args) == 1 {
				rev = args[0]
			}
			start, err := r.ResolveRevision(rev)
			if err != nil {
				return err
			}
			decorations, err := refDecorations(r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			n := 0
			for entry, err := range r.Log(start) {
				if err != nil {
					return err
				}
				printCommit(out, entry.Hash, entry.Commit, decorations[entry.Hash])
				n++
				if maxCount > 0 && n >= maxCount {
					break
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&maxCount, "max-count", "n", 0, "limit the number of commits shown")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [revision]",
		Short: "Show a commit and its changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			rev := repo.HeadRef
			if len(args) == 1 {
				rev = args[0]
			}
			h, err := r.ResolveRevision(rev)
			if err != nil {
				return err
			}
			c, err := r.GetCommit(h)
			if err != nil {
				return err
			}
			decorations, err := refDecorations(r)
			if err != nil {
				return err
			}
			patch, err := r.CommitDiff(cmd.Context(), h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printCommit(out, h, c, decorations[h])
			printPatch(out, patch)
			return nil
		},
	}
}

// refDecorations maps each commit to the short names of the references
// pointing at it.
func refDecorations(r *repo.Repo) (map[object.Hash][]string, error) {
	out := make(map[object.Hash][]string)
	for ref, err := range r.Refs.All("", true) {
		if err != nil {
			return nil, err
		}
		h := ref.Value.Hash()
		out[h] = append(out[h], repo.ShortRefName(ref.Name))
	}
	return out, nil
}

func printCommit(out io.Writer, h object.Hash, c *object.Commit, refs []string) {
	line := color.YellowString("commit %s", h)
	if len(refs) > 0 {
		line += " (" + color.CyanString(strings.Join(refs, ", ")) + ")"
	}
	fmt.Fprintln(out, line)
	if len(c.Parents) > 1 {
		parents := make([]string, len(c.Parents))
		for i, p := range c.Parents {
			parents[i] = p.Short()
		}
		fmt.Fprintf(out, "Merge: %s\n", strings.Join(parents, " "))
	}
	fmt.Fprintln(out)
	for _, l := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", l)
	}
	fmt.Fprintln(out)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
