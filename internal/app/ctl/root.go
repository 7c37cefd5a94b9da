package ctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Apurer/campus-canteen/internal/app/api"
	"github.com/Apurer/campus-canteen/internal/platform/storage"
)

// Uploader stores exported reports. storage.S3Uploader is the production implementation.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Environment is what every subcommand runs against.
type Environment struct {
	Backends    *api.Backends
	Logger      *slog.Logger
	NewUploader func(ctx context.Context, region, bucket string) (Uploader, error)
	Now         func() time.Time
}

// Opener builds the environment once flags are parsed; the returned func releases it.
type Opener func(ctx context.Context) (*Environment, func(), error)

type session struct {
	env   *Environment
	close func()
}

// Execute runs canteenctl against the configured database.
func Execute() {
	if err := NewRootCommand(OpenEnvironment).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand assembles the canteenctl command tree.
func NewRootCommand(open Opener) *cobra.Command {
	s := &session{}
	root := &cobra.Command{
		Use:           "canteenctl",
		Short:         "Operational tasks for the campus canteen",
		Long:          `canteenctl runs housekeeping against the canteen database: refilling daily stock, purging expired sessions, seeding demo menus, and exporting order analytics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			env, closeEnv, err := open(cmd.Context())
			if err != nil {
				return err
			}
			s.env, s.close = env, closeEnv
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if s.close != nil {
				s.close()
			}
		},
	}
	root.AddCommand(
		newResetStockCommand(s),
		newPurgeSessionsCommand(s),
		newSeedMenuCommand(s),
		newExportAnalyticsCommand(s),
	)
	return root
}

// OpenEnvironment connects to PostgreSQL using the API's configuration. In-memory
// repositories would vanish with the process, so a database is required.
func OpenEnvironment(ctx context.Context) (*Environment, func(), error) {
	cfg, err := api.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	backends, closeBackends := api.OpenBackends(ctx, cfg, logger)
	if !backends.Durable {
		closeBackends()
		return nil, nil, errors.New("POSTGRES_DSN not set or connection failed; canteenctl needs the database")
	}
	return &Environment{
		Backends: backends,
		Logger:   logger,
		NewUploader: func(ctx context.Context, region, bucket string) (Uploader, error) {
			return storage.NewS3Uploader(ctx, region, bucket)
		},
		Now: time.Now,
	}, closeBackends, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
