package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-scan/internal/rpc"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Answer JSON-RPC requests on stdin/stdout",
		Long: `Start a JSON-RPC 2.0 server on stdin/stdout with Content-Length framing.
Methods: verilog/analyze {path, splitLists?}, verilog/index {root}, shutdown, exit.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, wd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := rpc.NewServer(cfg, slog.Default())
	if err != nil {
		return err
	}
	slog.Debug("rpc server starting")
	if err := srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
