// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/CypherCore/CypherCore-sub002/internal/config"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
	"github.com/CypherCore/CypherCore-sub002/pkg/errutil"
)

// resetInterval is how often scheduled instance resets are checked.
const resetInterval = time.Minute

// NewServeCmd creates the serve command.
func NewServeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the persistence core",
		Long: `Load the game content and every stored instance save, run scheduled
instance resets, and serve gRPC health plus Prometheus metrics until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg, deps, newLogger(cmd, cfg))
		},
	}
}

// runServe blocks until ctx is cancelled or a server fails.
func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, deps *Deps, logger *slog.Logger) error {
	var ready atomic.Bool

	c, err := deps.LoadContent(cfg.Content.Path)
	if err != nil {
		return err
	}
	logger.Info("content loaded", "path", cfg.Content.Path, "max_level", c.MaxLevel())

	chars, err := deps.OpenPool(ctx, cfg.Database.CharacterURL)
	if err != nil {
		return err
	}
	defer chars.Close()
	login, err := deps.OpenPool(ctx, cfg.Database.LoginURL)
	if err != nil {
		return err
	}
	defer login.Close()

	reg := instance.NewRegistry(c, instance.WithRegistryLogger(logger))
	rows, err := deps.NewSource(chars, login).LoadInstances(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		reg.Ensure(row)
	}
	logger.Info("instance saves loaded", "count", len(rows))

	exec := store.NewExecutor(chars, store.ScopeCharacter,
		store.WithRetry(cfg.Database.MaxRetries, cfg.Database.RetryBase), store.WithLogger(logger))

	healthSrv := health.NewServer()
	grpcSrv := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return oops.Code("LISTEN_FAILED").With("addr", cfg.GRPC.Addr).Wrap(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return oops.Code("GRPC_SERVE_FAILED").Wrap(err)
		}
		return nil
	})

	var obs ObservabilityServer
	if cfg.Metrics.Addr != "" {
		obs = deps.NewObservability(cfg.Metrics.Addr, ready.Load)
		obsErr, err := obs.Start()
		if err != nil {
			grpcSrv.Stop()
			_ = g.Wait() //nolint:errcheck // start failure takes precedence
			return err
		}
		g.Go(func() error {
			select {
			case err, ok := <-obsErr:
				if ok && err != nil {
					return oops.Code("OBSERVABILITY_FAILED").Wrap(err)
				}
			case <-gctx.Done():
			}
			return nil
		})
	}

	g.Go(func() error {
		runResets(gctx, reg, exec, deps.Now, logger)
		return nil
	})

	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	ready.Store(true)
	cmd.Println("charcore ready")
	logger.Info("charcore ready", "grpc_addr", lis.Addr().String())

	<-gctx.Done()
	ready.Store(false)
	healthSrv.Shutdown()
	grpcSrv.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if obs != nil {
		if err := obs.Stop(shutdownCtx); err != nil {
			errutil.LogError(logger, "stopping observability server", err)
		}
	}

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}

// runResets applies due instance resets until ctx is done. A failed commit
// is logged; the in-memory rollover is kept.
func runResets(ctx context.Context, reg *instance.Registry, exec store.Committer, now func() time.Time, logger *slog.Logger) {
	t := time.NewTicker(resetInterval)
	defer t.Stop()
	for {
		resetDue(ctx, reg, exec, now(), logger)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func resetDue(ctx context.Context, reg *instance.Registry, exec store.Committer, now time.Time, logger *slog.Logger) int {
	tx := store.NewTransaction(store.ScopeCharacter)
	n := reg.ResetOrExpire(now, tx)
	if n == 0 {
		return 0
	}
	if err := exec.Commit(ctx, tx); err != nil {
		errutil.LogErrorContext(ctx, logger, "instance reset commit failed", err)
		return 0
	}
	logger.InfoContext(ctx, "instance resets applied", "count", n)
	return n
}
