// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// SaveBatch is a built but uncommitted save.
type SaveBatch struct {
	Result SaveResult
	Char   *store.Transaction
	Login  *store.Transaction

	// CharCommitted is set by Commit once the character scope is durable,
	// even when the login scope then fails.
	CharCommitted bool
}

// Acknowledge applies the outcome of committing b to p. After a failure
// only the character scope can have committed, and only it is
// acknowledged; login-scope rows are upserts and are written again.
func (b *SaveBatch) Acknowledge(p *Player, err error) {
	switch {
	case err == nil:
		p.SaveCommitted()
	case b.CharCommitted:
		p.CharacterCommitted()
	}
}

// Saver builds a player's save and commits both scopes.
type Saver struct {
	chars  store.Committer
	login  store.Committer
	logger *slog.Logger
}

// NewSaver creates a saver committing through chars and login.
func NewSaver(chars, login store.Committer, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{chars: chars, login: login, logger: logger}
}

// Build runs SaveToDB into fresh transactions.
func (s *Saver) Build(ctx context.Context, p *Player, create bool) (*SaveBatch, error) {
	b := &SaveBatch{
		Char:  store.NewTransaction(store.ScopeCharacter),
		Login: store.NewTransaction(store.ScopeLogin),
	}
	res, err := p.SaveToDB(ctx, b.Login, b.Char, create)
	if err != nil {
		return nil, err
	}
	b.Result = res
	return b, nil
}

// Commit commits both transactions of b concurrently. Each scope is atomic
// on its own and runs to completion whatever happens to the other; the
// failures of both are returned together.
func (s *Saver) Commit(ctx context.Context, b *SaveBatch) error {
	var (
		wg                sync.WaitGroup
		charErr, loginErr error
	)
	wg.Go(func() {
		if charErr = s.chars.Commit(ctx, b.Char); charErr == nil {
			b.CharCommitted = true
		}
	})
	wg.Go(func() {
		loginErr = s.login.Commit(ctx, b.Login)
	})
	wg.Wait()
	if err := errors.Join(charErr, loginErr); err != nil {
		return oops.Code("SAVE_COMMIT_FAILED").
			With("character_statements", b.Char.Len()).
			With("login_statements", b.Login.Len()).
			With("character_committed", b.CharCommitted).
			Wrap(err)
	}
	return nil
}

// Save builds, commits and acknowledges a save of p. A deferred save
// commits nothing and is reported through the result.
func (s *Saver) Save(ctx context.Context, p *Player, create bool) (SaveResult, error) {
	start := time.Now()
	b, err := s.Build(ctx, p, create)
	if err != nil {
		return SaveResult{}, err
	}
	if b.Result.Deferred {
		return b.Result, nil
	}
	err = s.Commit(ctx, b)
	b.Acknowledge(p, err)
	if err != nil {
		return b.Result, oops.With("guid", p.GUID()).Wrap(err)
	}
	saveDuration.Observe(time.Since(start).Seconds())
	return b.Result, nil
}
