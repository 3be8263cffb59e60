package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ashureev/studyguide/internal/probe"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func (c *cli) healthcheckCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Query the gRPC health probe of a running server",
		Long: `Exits non-zero unless the server reports SERVING. Suitable as a
container HEALTHCHECK command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = net.JoinHostPort("localhost", c.cfg.GRPCPort)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := probe.Check(ctx, addr)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.String())
			if status != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("server at %s is %s", addr, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "probe address (default localhost:$GRPC_PORT)")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "time to wait for the probe")
	return cmd
}
