package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/victornm/jeopardy/internal/config"
	"github.com/victornm/jeopardy/internal/server"
)

const envPrefix = "jeopardy"

type flags struct {
	config  string
	verbose bool
}

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "jeopardy",
		Short: "Host a Jeopardy-style trivia game on a shared screen.",
		Args:  cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if f.verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), f)
		},
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVarP(&f.config, "config", "c", os.Getenv("CONFIG_PATH"), "path to the YAML config file (env: CONFIG_PATH)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP, WebSocket and gRPC servers (default).",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), f)
			},
		},
		newExportCmd(&f),
		newImportCmd(&f),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func serve(ctx context.Context, f flags) error {
	c, err := loadConfig(f)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, os.Interrupt)
	defer stop()

	s, err := server.Init(c)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	go s.Start()

	<-ctx.Done()
	s.Shutdown()
	return nil
}

func loadConfig(f flags) (server.Config, error) {
	c := server.DefaultConfig()

	if err := config.Load(f.config, envPrefix, &c); err != nil {
		return c, fmt.Errorf("load config: %w", err)
	}

	return c, nil
}
