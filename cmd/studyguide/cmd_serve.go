package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.Close(); closeErr != nil {
					c.logger.Error("failed to close progress store", zap.Error(closeErr))
				}
			}()

			c.logger.Info("starting server",
				zap.String("port", c.cfg.Port),
				zap.String("grpc_port", c.cfg.GRPCPort),
				zap.Bool("dev", c.cfg.IsDevelopment()))
			return a.Serve(ctx)
		},
	}
}

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the study guide tools over MCP stdio",
		Long: `Runs a Model Context Protocol server on stdin/stdout exposing
ask_question, get_progress, update_progress, get_recommendations and
reset_progress. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(context.Background(), false)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.Close(); closeErr != nil {
					c.logger.Error("failed to close progress store", zap.Error(closeErr))
				}
			}()
			return server.ServeStdio(a.MCPServer())
		},
	}
}
