// Command vetis is the CLI entry point: a small cobra root command
// with "run" and "version" subcommands, in the shape of the teacher's
// cmd/cobra.go root command, pared down to this specification's one
// job of loading a config file and running the server until signaled.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ararog/vetis"
	"github.com/ararog/vetis/config"
	"github.com/ararog/vetis/vlog"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vetis",
		Short: "A configurable, multi-protocol HTTP server",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the server in the foreground until signaled",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "vetis.yaml", "path to the YAML configuration file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}

func runServer(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if level, err := vlog.ParseLevel(cfg.LogLevel); err == nil {
		_ = vlog.SetLevel(level)
	}

	srv, err := vetis.New(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		return err
	}

	srv.WaitNotify(ctx)
	return nil
}
