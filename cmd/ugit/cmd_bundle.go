package main

import (
	"fmt"
	"os"

	"github.com/google/renameio"
	"github.com/spf13/cobra"

	"github.com/odvcencio/ugit/pkg/remote"
)

func newBundleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Move history through a single file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <file> [ref]...",
		Short: "Write references and their objects to a bundle file",
		Long:  "Write references and every object they reach to a bundle file. With no refs every branch is bundled.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			pf, err := renameio.TempFile("", args[0])
			if err != nil {
				return err
			}
			defer pf.Cleanup()

			stats, err := remote.WriteBundle(cmd.Context(), pf, r, args[1:]...)
			if err != nil {
				return err
			}
			if err := pf.CloseAtomicallyReplace(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bundled %d ref(s), %d objects into %s\n", len(stats.Refs), stats.Objects, args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unbundle <file>",
		Short: "Import a bundle file",
		Long:  "Import the objects of a bundle file. Bundled branches land in refs/remote/; bundled tags are created when missing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := remote.ReadBundle(cmd.Context(), f, r)
			if err != nil {
				return err
			}
			printFetchResult(cmd.OutOrStdout(), res)
			return nil
		},
	})
	return cmd
}
