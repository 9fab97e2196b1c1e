package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newHashObjectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Store a file as a blob and print its digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			h, err := r.Store.WriteBlob(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newCatFileCmd(a *app) *cobra.Command {
	var showKind bool

	cmd := &cobra.Command{
		Use:   "cat-file <object>",
		Short: "Print the payload of a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			h, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			kind, data, err := r.Store.Get(h, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if showKind {
				fmt.Fprintln(out, kind)
				return nil
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVarP(&showKind, "type", "t", false, "print the object kind instead of its payload")
	return cmd
}

func newWriteTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Write the index as a tree and print its digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			h, err := r.WriteTree()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newReadTreeCmd(a *app) *cobra.Command {
	var update bool

	cmd := &cobra.Command{
		Use:   "read-tree <tree>",
		Short: "Replace the index with a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			h, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			// A commit stands for its tree.
			if c, err := r.GetCommit(h); err == nil {
				h = c.Tree
			}
			if _, err := r.Store.ReadTree(h); err != nil {
				return err
			}
			return r.ReadTreeIntoIndex(h, update)
		},
	}
	cmd.Flags().BoolVarP(&update, "update", "u", false, "also check the tree out into the working tree")
	return cmd
}
