// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/observability"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Pool is a database pool the commands can close.
type Pool interface {
	store.Pool
	Close()
}

// CharacterSource reads the result sets a character load needs.
type CharacterSource interface {
	LoadCharacter(ctx context.Context, guid, account int64, now time.Time) (*store.LoadBatch, error)
	LoadAccount(ctx context.Context, account int64) (*store.AccountBatch, error)
	LoadInstances(ctx context.Context) ([]store.InstanceRow, error)
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Pending() ([]uint, error)
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// Deps contains the injectable dependencies of the commands. Nil fields
// use their default implementations.
type Deps struct {
	// OpenPool connects to a database. Default: pgxpool.New.
	OpenPool func(ctx context.Context, url string) (Pool, error)

	// NewSource builds a loader over the two pools. Default: store.NewLoader.
	NewSource func(chars, login Pool) CharacterSource

	// LoadContent reads the game-content file. Default: content.Load.
	LoadContent func(path string) (*content.Store, error)

	// NewMigrator opens a migrator for one scope. Default: store.NewMigrator.
	NewMigrator func(scope store.Scope, url string) (Migrator, error)

	// NewObservability creates the metrics server. Default: observability.NewServer.
	NewObservability func(addr string, ready observability.ReadinessChecker) ObservabilityServer

	// Now is the clock. Default: time.Now.
	Now func() time.Time
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.OpenPool == nil {
		out.OpenPool = func(ctx context.Context, url string) (Pool, error) {
			pool, err := pgxpool.New(ctx, url)
			if err != nil {
				return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
			}
			return pool, nil
		}
	}
	if out.NewSource == nil {
		out.NewSource = func(chars, login Pool) CharacterSource { return store.NewLoader(chars, login) }
	}
	if out.LoadContent == nil {
		out.LoadContent = content.Load
	}
	if out.NewMigrator == nil {
		out.NewMigrator = func(scope store.Scope, url string) (Migrator, error) {
			m, err := store.NewMigrator(scope, url)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	if out.NewObservability == nil {
		out.NewObservability = func(addr string, ready observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, ready)
		}
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return &out
}
