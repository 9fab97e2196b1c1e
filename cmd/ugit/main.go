package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/odvcencio/ugit/pkg/repo"
)

const version = "ugit 0.1.0-dev"

// app carries settings shared by every command: flags and UGIT_* environment
// variables bound through viper.
type app struct {
	v *viper.Viper
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("UGIT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()
	a.v.SetDefault("repo", ".")

	root := &cobra.Command{
		Use:           "ugit",
		Short:         "A small content-addressed version control system",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.v.GetBool("no-color") {
				color.NoColor = true
			}
			log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
			log.SetOutput(cmd.ErrOrStderr())
			return a.setLogLevel(a.v.GetString("log.level"))
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("repo", "C", ".", "run as if started in this directory")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "disable colored output")
	mustBind(a.v, "repo", flags.Lookup("repo"))
	mustBind(a.v, "log.level", flags.Lookup("log-level"))
	mustBind(a.v, "no-color", flags.Lookup("no-color"))

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newHashObjectCmd(a),
		newCatFileCmd(a),
		newWriteTreeCmd(a),
		newReadTreeCmd(a),
		newAddCmd(a),
		newCommitCmd(a),
		newLogCmd(a),
		newShowCmd(a),
		newDiffCmd(a),
		newStatusCmd(a),
		newCheckoutCmd(a),
		newBranchCmd(a),
		newTagCmd(a),
		newResetCmd(a),
		newUnstageCmd(a),
		newMergeCmd(a),
		newMergeBaseCmd(a),
		newFetchCmd(a),
		newPushCmd(a),
		newRemoteCmd(a),
		newBundleCmd(a),
		newReflogCmd(a),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

func (a *app) setLogLevel(level string) error {
	if level == "" {
		log.SetLevel(log.WarnLevel)
		return nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// openRepo opens the repository containing the --repo directory. A log
// level from the repository config applies unless one was given explicitly.
func (a *app) openRepo() (*repo.Repo, error) {
	r, err := repo.Discover(a.v.GetString("repo"))
	if err != nil {
		return nil, err
	}
	if a.v.GetString("log.level") == "" && r.Config.Log.Level != "" {
		if err := a.setLogLevel(r.Config.Log.Level); err != nil {
			return nil, fmt.Errorf("config log.level: %w", err)
		}
	}
	return r, nil
}

// remotePath maps a configured remote name to its path; anything else is
// taken as a path.
func remotePath(r *repo.Repo, nameOrPath string) string {
	if p, err := r.RemotePath(nameOrPath); err == nil {
		return p
	}
	return nameOrPath
}
