package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/ugit/pkg/remote"
	"github.com/odvcencio/ugit/pkg/repo"
)

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <remote>",
		Short: "Copy branches and objects from another repository",
		Long:  "Copy every branch of another repository into refs/remote/, along with the objects they need. <remote> is a configured remote name or a path.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			res, err := remote.Fetch(cmd.Context(), r, remotePath(r, args[0]))
			if err != nil {
				return err
			}
			printFetchResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newPushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "push <remote> <branch>",
		Short: "Send a branch and its objects to another repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			ref := args[1]
			if !strings.HasPrefix(ref, "refs/") {
				ref = repo.BranchPrefix + ref
			}
			res, err := remote.Push(cmd.Context(), r, remotePath(r, args[0]), ref)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.UpToDate() {
				fmt.Fprintln(out, "Everything up-to-date")
				return nil
			}
			old := "(new)"
			if !res.Old.IsZero() {
				old = res.Old.Short()
			}
			fmt.Fprintf(out, "%s..%s  %s (%d objects)\n", old, res.New.Short(), repo.ShortRefName(res.Ref), res.Objects)
			return nil
		},
	}
}

func newRemoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage named remotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			for _, name := range r.RemoteNames() {
				p, _ := r.RemotePath(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, p)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <path>",
		Short: "Add or update a named remote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			if _, err := repo.Open(args[1]); err != nil {
				return fmt.Errorf("remote %q: %w", args[0], err)
			}
			if err := r.SetRemote(args[0], args[1]); err != nil {
				return err
			}
			p, _ := r.RemotePath(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "added remote %q -> %s\n", args[0], p)
			return nil
		},
	})
	return cmd
}

func printFetchResult(out io.Writer, res *remote.FetchResult) {
	for _, u := range res.Refs {
		old := "(new)"
		if !u.Old.IsZero() {
			old = u.Old.Short()
		}
		fmt.Fprintf(out, "%s..%s  %s\n", old, u.New.Short(), color.CyanString(u.Name))
	}
	fmt.Fprintf(out, "%d objects received\n", res.Objects)
}
