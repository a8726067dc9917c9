// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/CypherCore/CypherCore-sub002/internal/logging"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// SaveResult describes the statements one SaveToDB call produced.
type SaveResult struct {
	CharStatements  int
	LoginStatements int
	// Deferred is set when nothing was written because the character is
	// between maps; the save should be retried after RetryAfter.
	Deferred   bool
	RetryAfter time.Duration
}

// Empty reports whether the save produced no statements.
func (r SaveResult) Empty() bool { return r.CharStatements == 0 && r.LoginStatements == 0 }

// SaveToDB appends the statements needed to make storage match the
// aggregate: the character row (inserted when create is set), then each
// facet's changes. Account collections go to login, everything else to
// char. Nothing is acknowledged until SaveCommitted is called.
func (p *Player) SaveToDB(ctx context.Context, login, char *store.Transaction, create bool) (SaveResult, error) {
	if login == nil || char == nil || login.Scope() != store.ScopeLogin || char.Scope() != store.ScopeCharacter {
		return SaveResult{}, oops.Code("SAVE_SCOPE_MISMATCH").
			With("guid", p.guid).
			Errorf("save needs a login and a character transaction")
	}
	if p.teleport.far() {
		deferredSaves.Inc()
		p.logger.DebugContext(ctx, "save deferred during far teleport", "retry_after", p.cfg.DeferredRetry)
		return SaveResult{Deferred: true, RetryAfter: p.cfg.DeferredRetry}, nil
	}

	now := p.now()
	op := newOpID(now)
	ctx = logging.WithCharacter(ctx, p.guid, p.account)
	ctx, span := tracer.Start(ctx, "character.Save", trace.WithAttributes(
		attribute.Int64("character.guid", p.guid),
		attribute.Bool("create", create),
		attribute.String("op", op.String())))
	defer span.End()

	charBefore, loginBefore := char.Len(), login.Len()

	if create || p.baseDirty {
		p.base.LogoutTime = now.Truncate(time.Second)
		if create {
			char.Append(store.CharInsCharacter, append([]any{p.guid, p.account}, p.rowArgs(now)...)...)
		} else {
			char.Append(store.CharUpdCharacter, append([]any{p.guid}, p.rowArgs(now)...)...)
		}
	}

	// Instance rows created or reset by gameplay go ahead of the binds
	// that reference them. The group's writer carries the group's queue as
	// well, and holds it in pending until the character scope commits.
	if p.writesGroup() {
		p.group.Drain(p.pending)
	}
	char.Merge(p.pending)
	p.lastChar = char

	if p.homeDirty {
		l := p.homebind.Location
		char.Append(store.CharRepHomebind, p.guid, int32(l.Map), int32(p.homebind.Zone), l.X, l.Y, l.Z, l.O)
	}
	p.declined.emit(char, p.guid)
	p.currencies.emit(char, p.guid)
	p.skills.emit(char, p.guid)
	p.spells.emit(char, p.guid)
	p.auras.emit(char, p.guid)
	p.talents.emit(char, p.guid)
	p.quests.emit(char, p.guid)
	p.inventory.emit(char, p.guid)
	p.equipmentSets.emit(char, p.guid)
	p.actions.emit(char, p.guid)
	p.void.emit(char, p.guid)
	p.cuf.emit(char, p.guid)
	p.mail.emit(char)
	// a save created through the group may not have its row committed yet
	p.binds.EnsureInstances(char)
	p.binds.EmitStatements(char)
	p.times.EmitStatements(char)
	p.collections.EmitStatements(login)

	res := SaveResult{
		CharStatements:  char.Len() - charBefore,
		LoginStatements: login.Len() - loginBefore,
	}
	saveStatements.WithLabelValues(store.ScopeCharacter.String()).Add(float64(res.CharStatements))
	saveStatements.WithLabelValues(store.ScopeLogin.String()).Add(float64(res.LoginStatements))
	span.SetAttributes(
		attribute.Int("statements.character", res.CharStatements),
		attribute.Int("statements.login", res.LoginStatements))
	p.logger.DebugContext(ctx, "character save built", "op", op.String(),
		"character_statements", res.CharStatements, "login_statements", res.LoginStatements)
	return res, nil
}

// SaveCommitted acknowledges that the statements of the last SaveToDB are
// durable: every entity returns to Unchanged and removed entities are
// dropped.
func (p *Player) SaveCommitted() {
	p.CharacterCommitted()
	p.collections.Committed()
}

// CharacterCommitted acknowledges only the character scope of the last
// SaveToDB. Account collections stay dirty.
func (p *Player) CharacterCommitted() {
	p.baseDirty = false
	p.homeDirty = false
	p.declined.committed()
	p.currencies.committed()
	p.skills.committed()
	p.spells.committed()
	p.auras.committed()
	p.talents.committed()
	p.quests.committed()
	p.inventory.committed()
	p.equipmentSets.committed()
	p.actions.committed()
	p.void.committed()
	p.cuf.committed()
	p.mail.committed()
	p.binds.Committed()
	p.times.Committed()
	if p.lastChar != nil && p.cfg.Registry != nil {
		p.cfg.Registry.Committed(p.lastChar)
		p.lastChar = nil
	}
	p.pending = store.NewTransaction(store.ScopeCharacter)
}

// Dirty reports whether a save would produce any statement.
func (p *Player) Dirty() bool {
	n := p.currencies.Dirty() + p.skills.Dirty() + p.spells.Dirty() + p.auras.Dirty() +
		p.talents.Dirty() + p.quests.Dirty() + p.inventory.Dirty() + p.equipmentSets.Dirty() +
		p.actions.Dirty() + p.void.Dirty() + p.mail.Dirty() + p.binds.Dirty() + p.collections.Dirty()
	return n > 0 || p.baseDirty || p.homeDirty || p.declined.dirty || p.cuf.Dirty() ||
		p.times.Dirty() || !p.pending.Empty() || (p.writesGroup() && p.group.Pending())
}

func (p *Player) leadsGroup() bool { return p.group != nil && p.group.Leader() == p.guid }

func (p *Player) writesGroup() bool { return p.group != nil && p.group.Writer() == p.guid }

// rowArgs returns the character row columns after guid and account, in
// statement order.
func (p *Player) rowArgs(logout time.Time) []any {
	b := &p.base
	d := p.difficulties
	return []any{
		b.Name, int16(b.Race), int16(b.Class), int16(b.Gender), int16(b.Level), int32(b.XP), int64(b.Money),
		int16(b.Skin), int16(b.Face), int16(b.HairStyle), int16(b.HairColor),
		int32(b.Position.Map), int32(b.InstanceID), int16(d.Dungeon), int16(d.Raid), int16(d.LegacyRaid),
		b.Position.X, b.Position.Y, b.Position.Z, b.Position.O,
		b.TransportGUID, toInt32s(b.TaxiPath), int32(b.Health), int32(b.Power), int32(b.AtLogin),
		int32(b.ExtraFlags), int16(p.talents.ActiveGroup()), int32(b.TotalTime), int32(b.LevelTime),
		logout.Unix(),
	}
}

// int32s returns v, or an empty slice for nil, for NOT NULL array columns.
func int32s(v []int32) []int32 {
	if v == nil {
		return []int32{}
	}
	return v
}

func toInt32s(v []uint32) []int32 {
	out := make([]int32, len(v))
	for i, x := range v {
		out[i] = int32(x)
	}
	return out
}

func uint32s(v []int32) []uint32 {
	if len(v) == 0 {
		return nil
	}
	out := make([]uint32, len(v))
	for i, x := range v {
		out[i] = uint32(x)
	}
	return out
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K { return slices.Sorted(maps.Keys(m)) }
