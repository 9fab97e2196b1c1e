package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/ugit/pkg/object"
	"github.com/odvcencio/ugit/pkg/repo"
)

func newDiffCmd(a *app) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "diff [commit]",
		Short: "Show changes between a commit, the index and the working tree",
		Long: `Without arguments, show changes from the index to the working tree.
With --cached, show changes from HEAD to the index. A commit replaces
the left-hand side of either comparison.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			var from, to map[string]object.Hash
			switch {
			case len(args) == 1:
				if from, err = commitSnapshot(r, args[0]); err != nil {
					return err
				}
			case cached:
				if from, err = commitSnapshot(r, repo.HeadRef); err != nil {
					return err
				}
			}

			idx, err := r.ReadIndex()
			if err != nil {
				return err
			}
			if cached {
				to = idx
			} else {
				if from == nil {
					from = idx
				}
				if to, err = r.ScanWorkingTree(); err != nil {
					return err
				}
			}

			patch, err := r.Diff(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			printPatch(cmd.OutOrStdout(), patch)
			return nil
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "compare against the index instead of the working tree")
	return cmd
}

// commitSnapshot flattens the tree of the commit rev names. An unborn HEAD
// is an empty snapshot.
func commitSnapshot(r *repo.Repo, rev string) (map[string]object.Hash, error) {
	if rev == repo.HeadRef {
		head, err := r.HeadCommit()
		if err != nil {
			return nil, err
		}
		if head.IsZero() {
			return map[string]object.Hash{}, nil
		}
	}
	h, err := r.ResolveRevision(rev)
	if err != nil {
		return nil, err
	}
	c, err := r.GetCommit(h)
	if err != nil {
		return nil, err
	}
	return r.FlattenTree(c.Tree, "")
}

func printPatch(out io.Writer, patch []byte) {
	for _, line := range bytes.SplitAfter(patch, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		s := string(line)
		switch {
		case bytes.HasPrefix(line, []byte("+++")), bytes.HasPrefix(line, []byte("---")):
			fmt.Fprint(out, color.New(color.Bold).Sprint(s))
		case bytes.HasPrefix(line, []byte("@@")):
			fmt.Fprint(out, color.CyanString("%s", s))
		case line[0] == '+':
			fmt.Fprint(out, color.GreenString("%s", s))
		case line[0] == '-':
			fmt.Fprint(out, color.RedString("%s", s))
		default:
			fmt.Fprint(out, s)
		}
	}
}
