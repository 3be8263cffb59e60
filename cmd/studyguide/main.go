// studyguide - AWS Data Engineer study guide: question routing, progress
// tracking and recommendations over HTTP, MCP and the command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ashureev/studyguide/internal/app"
	"github.com/ashureev/studyguide/internal/config"
	"github.com/ashureev/studyguide/internal/llm"
	"github.com/ashureev/studyguide/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries state shared by every subcommand.
type cli struct {
	envFile  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger

	// generator overrides the configured model; tests set it.
	generator llm.Generator
}

func newRootCmd() *cobra.Command {
	return (&cli{}).rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studyguide",
		Short: "AWS Certified Data Engineer study guide",
		Long: `studyguide answers exam questions by routing them to domain specialists
(ingestion, storage, security, operations, course coordinator), tracks which
study-guide sections and labs you have completed, and recommends what to do next.

Configuration comes from the environment (and an optional .env file).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to load if present")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		c.serveCmd(),
		c.mcpCmd(),
		c.askCmd(),
		c.progressCmd(),
		c.nextCmd(),
		c.healthcheckCmd(),
	)
	return root
}

func (c *cli) init() error {
	if c.cfg != nil {
		return nil
	}
	config.LoadDotEnv(c.envFile)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}

	logger, err := logging.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.cfg, c.logger = cfg, logger
	return nil
}

// open builds the application. Commands that never reach the model pass
// offline=true so a missing API key does not block them.
func (c *cli) open(ctx context.Context, offline bool) (*app.App, error) {
	var opts []app.Option
	switch {
	case c.generator != nil:
		opts = append(opts, app.WithGenerator(c.generator))
	case offline:
		opts = append(opts, app.WithGenerator(llm.Disabled{}))
	}
	return app.New(ctx, c.cfg, c.logger, opts...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
