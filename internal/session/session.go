// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package session runs one character's mutations and saves on a single
// goroutine. Commits run off that goroutine and post their completion back
// to it.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/CypherCore/CypherCore-sub002/internal/character"
	"github.com/CypherCore/CypherCore-sub002/internal/logging"
	"github.com/CypherCore/CypherCore-sub002/pkg/errutil"
)

// DefaultQueueSize is the number of posted closures a session buffers.
const DefaultQueueSize = 64

// SaveFunc receives the outcome of a save once it has been committed, or
// once it was found to have nothing to commit.
type SaveFunc func(character.SaveResult, error)

// Config configures a Session.
type Config struct {
	Saver *character.Saver
	// Interval between autosaves; zero disables them.
	Interval  time.Duration
	QueueSize int
	Logger    *slog.Logger
}

// Session owns a Player. Only the session goroutine touches it.
type Session struct {
	player   *character.Player
	saver    *character.Saver
	interval time.Duration
	logger   *slog.Logger

	queue   chan func()
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
	commits sync.WaitGroup

	// Owned by the session goroutine.
	ctx      context.Context
	inFlight bool
	held     []func(*character.Player)
	waiting  []SaveFunc
	retry    *time.Timer
	closing  func()
}

// New creates a session for p. Run must be called to start it.
func New(p *character.Player, cfg Config) *Session {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		player:   p,
		saver:    cfg.Saver,
		interval: cfg.Interval,
		logger:   logger.With("character_guid", p.GUID()),
		queue:    make(chan func(), cfg.QueueSize),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Run drains the session queue until ctx is cancelled or Close finishes.
// It waits for commits still running before returning.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)
	s.ctx = logging.WithCharacter(ctx, s.player.GUID(), s.player.Account())

	var tick <-chan time.Time
	if s.interval > 0 {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		tick = t.C
	}

	defer func() {
		if s.retry != nil {
			s.retry.Stop()
		}
		s.stop()
		s.commits.Wait()
	}()

	for {
		select {
		case fn := <-s.queue:
			fn()
		case <-tick:
			s.save(nil)
		case <-s.quit:
			return nil
		case <-ctx.Done():
			return oops.Code("SESSION_CANCELLED").With("guid", s.player.GUID()).Wrap(ctx.Err())
		}
	}
}

func (s *Session) stop() { s.once.Do(func() { close(s.quit) }) }

// enqueue hands fn to the session goroutine. It reports false once the
// session has stopped.
func (s *Session) enqueue(fn func()) bool {
	select {
	case <-s.quit:
		return false
	default:
	}
	select {
	case s.queue <- fn:
		return true
	case <-s.quit:
		return false
	}
}

// Post runs fn against the player on the session goroutine. While a
// commit is in flight fn is held until the commit completes, so the
// acknowledgement never covers a change the commit did not carry.
func (s *Session) Post(fn func(*character.Player)) bool {
	return s.enqueue(func() {
		if s.inFlight {
			s.held = append(s.held, fn)
			return
		}
		fn(s.player)
	})
}

// Save requests a save. done, when not nil, is called on the session
// goroutine with the result.
func (s *Session) Save(done SaveFunc) bool {
	return s.enqueue(func() { s.save(done) })
}

// Close saves the player a last time, releases its binds and stops the
// session. It returns the final save's error.
func (s *Session) Close(ctx context.Context) error {
	errc := make(chan error, 1)
	ok := s.enqueue(func() {
		s.closing = func() { s.logout(errc) }
		if !s.inFlight {
			s.closing()
		}
	})
	if !ok {
		return oops.Code("SESSION_STOPPED").With("guid", s.player.GUID()).Errorf("session already stopped")
	}
	select {
	case err := <-errc:
		<-s.stopped
		return err
	case <-ctx.Done():
		return oops.Code("SESSION_CLOSE_TIMEOUT").With("guid", s.player.GUID()).Wrap(ctx.Err())
	}
}

// logout runs on the session goroutine with no commit in flight. A far
// teleport still under way is completed first, since the final save cannot
// be postponed.
func (s *Session) logout(errc chan<- error) {
	if dest, ok := s.player.FinishFarTeleport(); ok {
		s.logger.InfoContext(s.ctx, "far teleport landed for logout", "map", dest.Map)
	}
	_, err := s.saver.Save(s.ctx, s.player, false)
	if err != nil {
		errutil.LogErrorContext(s.ctx, s.logger, "final save failed", err)
	}
	s.player.LogOut()
	s.stop()
	errc <- err
}

func (s *Session) save(done SaveFunc) {
	if s.inFlight {
		if done != nil {
			s.waiting = append(s.waiting, done)
		}
		return
	}

	b, err := s.saver.Build(s.ctx, s.player, false)
	switch {
	case err != nil:
		errutil.LogErrorContext(s.ctx, s.logger, "save build failed", err)
		reply(done, character.SaveResult{}, err)
		return
	case b.Result.Deferred:
		s.scheduleRetry(b.Result.RetryAfter)
		reply(done, b.Result, nil)
		return
	case b.Char.Empty() && b.Login.Empty():
		s.player.SaveCommitted()
		reply(done, b.Result, nil)
		return
	}

	s.inFlight = true
	start := time.Now()
	ctx := s.ctx
	s.commits.Add(1)
	go func() {
		defer s.commits.Done()
		err := s.saver.Commit(ctx, b)
		s.enqueue(func() { s.committed(b, err, time.Since(start), done) })
	}()
}

// committed runs on the session goroutine when a commit finishes.
func (s *Session) committed(b *character.SaveBatch, err error, took time.Duration, done SaveFunc) {
	s.inFlight = false
	b.Acknowledge(s.player, err)
	if err != nil {
		commits.WithLabelValues("failed").Inc()
		errutil.LogErrorContext(s.ctx, s.logger, "save commit failed", err)
	} else {
		commits.WithLabelValues("ok").Inc()
		commitDuration.Observe(took.Seconds())
	}
	reply(done, b.Result, err)

	held := s.held
	s.held = nil
	for _, fn := range held {
		fn(s.player)
	}

	if s.closing != nil {
		s.closing()
		return
	}
	if waiting := s.waiting; len(waiting) > 0 {
		s.waiting = nil
		s.save(func(r character.SaveResult, err error) {
			for _, w := range waiting {
				w(r, err)
			}
		})
	}
}

func (s *Session) scheduleRetry(after time.Duration) {
	if s.retry != nil || after <= 0 {
		return
	}
	s.retry = time.AfterFunc(after, func() {
		s.enqueue(func() {
			s.retry = nil
			s.save(nil)
		})
	})
}

func reply(done SaveFunc, res character.SaveResult, err error) {
	if done != nil {
		done(res, err)
	}
}
