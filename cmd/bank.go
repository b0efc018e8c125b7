package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/victornm/jeopardy/internal/event"
	"github.com/victornm/jeopardy/internal/game"
	"github.com/victornm/jeopardy/internal/server"
	"github.com/victornm/jeopardy/internal/session"
	"github.com/victornm/jeopardy/internal/store"
)

func newExportCmd(f *flags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored board as a question bank file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), *f, func(ctx context.Context, s *session.Service, _ *store.Snapshot) error {
				b, err := s.Export(ctx)
				if err != nil {
					return err
				}

				if out == "-" {
					_, err = cmd.OutOrStdout().Write(b)
					return err
				}

				if err := os.WriteFile(out, b, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}

				slog.InfoContext(ctx, "export: done", "file", out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", game.BankFilename, `file to write, "-" for stdout`)
	return cmd
}

func newImportCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored board with a question bank file. Stop the server first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			return withSession(cmd.Context(), *f, func(ctx context.Context, s *session.Service, snap *store.Snapshot) error {
				st, err := s.Import(ctx, session.ImportRequest{Data: data})
				if err != nil {
					return err
				}

				// Saved here as well so a failed write is reported.
				if err := snap.SaveCategories(ctx, st.Categories); err != nil {
					return err
				}

				slog.InfoContext(ctx, "import: done", "file", args[0], "categories", len(st.Categories))
				return nil
			})
		},
	}
}

// withSession runs fn against a session restored from the configured store. Changes are
// flushed to the store before it returns.
func withSession(ctx context.Context, f flags, fn func(ctx context.Context, s *session.Service, snap *store.Snapshot) error) error {
	c, err := loadConfig(f)
	if err != nil {
		return err
	}

	var rc redis.UniversalClient
	if c.Store.Driver == store.DriverRedis {
		rc, err = server.ConnectRedis(c.Redis.Addrs, c.Redis.Pass)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rc.Close()
	}

	kv, closeStore, err := server.OpenStore(ctx, c.Store, rc, c.Redis.Prefix)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer closeStore()

	snap := store.NewSnapshot(kv)
	eb := event.NewBus()
	snap.Subscribe(eb)

	s := session.NewService(ctx, session.Config{
		EventBus: eb,
		Snapshot: snap,
	})

	err = fn(ctx, s, snap)

	s.Stop()
	eb.Stop()

	return err
}
