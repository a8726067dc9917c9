// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/group"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
	"github.com/CypherCore/CypherCore-sub002/internal/logging"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
	"github.com/CypherCore/CypherCore-sub002/pkg/errutil"
)

var tracer = otel.Tracer("github.com/CypherCore/CypherCore-sub002/internal/character")

// LoadIdentity names the character being loaded and the account asking
// for it.
type LoadIdentity struct {
	GUID    int64
	Account int64
}

// LoadFailReason says why a character cannot be loaded.
type LoadFailReason uint8

// Fatal load outcomes.
const (
	LoadNotFound LoadFailReason = iota + 1
	LoadAccountMismatch
	LoadBanned
	LoadInvalidName
	LoadInvalidRaceClass
	LoadInvalidAppearance
)

// String returns the reason name.
func (r LoadFailReason) String() string {
	switch r {
	case LoadNotFound:
		return "not_found"
	case LoadAccountMismatch:
		return "account_mismatch"
	case LoadBanned:
		return "banned"
	case LoadInvalidName:
		return "invalid_name"
	case LoadInvalidRaceClass:
		return "invalid_race_class"
	case LoadInvalidAppearance:
		return "invalid_appearance"
	default:
		return fmt.Sprintf("load_fail(%d)", uint8(r))
	}
}

// LoadError is returned when a character cannot be loaded at all.
type LoadError struct {
	GUID   int64
	Reason LoadFailReason
	err    error
}

func newLoadError(guid int64, reason LoadFailReason, detail string) *LoadError {
	return &LoadError{
		GUID:   guid,
		Reason: reason,
		err: oops.Code("CHARACTER_LOAD_FAILED").
			With("guid", guid).
			With("reason", reason.String()).
			Errorf("%s", detail),
	}
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("character %d: %s: %v", e.GUID, e.Reason, e.err)
}

func (e *LoadError) Unwrap() error { return e.err }

// repairs collects the corrections made while loading. Each one is logged
// and counted; corrective statements go to the caller's repair
// transaction.
type repairs struct {
	ctx    context.Context
	logger *slog.Logger
	tx     *store.Transaction
	count  int
}

func (r *repairs) note(msg, kind, key string, value any) {
	r.count++
	repairCount.WithLabelValues(kind).Inc()
	r.logger.WarnContext(r.ctx, msg, "kind", kind, key, value)
}

// skip records a row that was ignored and left in storage.
func (r *repairs) skip(kind, key string, value any) { r.note("skipping invalid row", kind, key, value) }

// fixed records a row corrected in memory and saved back later.
func (r *repairs) fixed(kind, key string, value any) { r.note("correcting invalid row", kind, key, value) }

// delete queues removal of an invalid row.
func (r *repairs) delete(kind string, stmt store.StatementID, args ...any) {
	r.tx.Append(stmt, args...)
	r.note("deleting invalid row", kind, "statement", stmt.String())
}

// rewrite queues a corrected copy of a row.
func (r *repairs) rewrite(kind string, stmt store.StatementID, args ...any) {
	r.tx.Append(stmt, args...)
	r.note("rewriting invalid row", kind, "statement", stmt.String())
}

// loadState is the working set of one LoadFromDB call.
type loadState struct {
	p           *Player
	id          LoadIdentity
	batch       *store.LoadBatch
	r           *repairs
	now         time.Time
	logout      time.Time
	activeGroup uint8
}

type loadStep struct {
	name string
	run  func(*loadState) error
}

// loadSteps run in order. Later steps rely on earlier ones: stats need
// items and auras, placement needs binds, the group and quest state.
var loadSteps = []loadStep{
	{"identity", (*loadState).identity},
	{"base", (*loadState).base},
	{"homebind", (*loadState).homebind},
	{"group", (*loadState).group},
	{"achievements", (*loadState).achievements},
	{"currency", (*loadState).currency},
	{"skills", (*loadState).skills},
	{"spells", (*loadState).spells},
	{"auras", (*loadState).auras},
	{"talents", (*loadState).talents},
	{"glyphs", (*loadState).glyphs},
	{"quests", (*loadState).quests},
	{"inventory", (*loadState).inventory},
	{"equipment_sets", (*loadState).equipmentSets},
	{"void_storage", (*loadState).voidStorage},
	{"mail", (*loadState).mail},
	{"action_buttons", (*loadState).actions},
	{"cuf_profiles", (*loadState).cufProfiles},
	{"declined_names", (*loadState).declinedNames},
	{"instance_times", (*loadState).instanceTimes},
	{"binds", (*loadState).binds},
	{"placement", (*loadState).placement},
	{"stats", (*loadState).stats},
	{"clamp", (*loadState).clamp},
}

// LoadFromDB fills an empty Player from batch. Corrections for invalid
// rows are appended to repair, which the caller commits. A character that
// must not be loaded yields a *LoadError; any other error is operational.
func (p *Player) LoadFromDB(ctx context.Context, id LoadIdentity, batch *store.LoadBatch, repair *store.Transaction) error {
	if repair == nil {
		repair = store.NewTransaction(store.ScopeCharacter)
	}
	if repair.Scope() != store.ScopeCharacter {
		return oops.Code("LOAD_SCOPE_MISMATCH").
			With("scope", repair.Scope().String()).
			Errorf("repair transaction must use the character scope")
	}
	if batch == nil {
		batch = &store.LoadBatch{}
	}

	now := p.now()
	op := newOpID(now)
	ctx = logging.WithCharacter(ctx, id.GUID, id.Account)
	ctx, span := tracer.Start(ctx, "character.Load",
		trace.WithAttributes(attribute.Int64("character.guid", id.GUID), attribute.String("op", op.String())))
	defer span.End()

	logger := p.logger.With("op", op.String())
	st := &loadState{
		p:     p,
		id:    id,
		batch: batch,
		r:     &repairs{ctx: ctx, logger: logger, tx: repair},
		now:   now,
	}
	for _, step := range loadSteps {
		if err := step.run(st); err != nil {
			span.RecordError(err)
			var le *LoadError
			if errors.As(err, &le) {
				loadFailures.WithLabelValues(le.Reason.String()).Inc()
			}
			errutil.LogErrorContext(ctx, logger, "character load failed", oops.With("step", step.name).Wrap(err))
			return err
		}
	}

	if p.group != nil {
		p.group.Attach(p.guid)
	}
	loads.Inc()
	logger.DebugContext(ctx, "character loaded",
		"name", p.base.Name, "map", p.base.Position.Map, "repairs", st.r.count)
	return nil
}

func (s *loadState) fail(reason LoadFailReason, detail string) error {
	return newLoadError(s.id.GUID, reason, detail)
}

func (s *loadState) identity() error {
	row := s.batch.Character
	c := s.p.cfg.Content
	switch {
	case row == nil:
		return s.fail(LoadNotFound, "no character row")
	case row.Account != s.id.Account:
		return s.fail(LoadAccountMismatch, "character belongs to another account")
	case s.batch.Banned:
		return s.fail(LoadBanned, "character is banned")
	}
	if s.p.cfg.Names != nil {
		if check := s.p.cfg.Names.Validate(row.Name); check != NameOK {
			return s.fail(LoadInvalidName, check.String())
		}
	}
	race, raceOK := c.Race(uint8(row.Race))
	_, classOK := c.Class(uint8(row.Class))
	if !raceOK || !classOK {
		return s.fail(LoadInvalidRaceClass, "unknown race or class")
	}
	if _, ok := c.PlayerCreate(uint8(row.Race), uint8(row.Class)); !ok {
		return s.fail(LoadInvalidRaceClass, "race and class combination is not playable")
	}
	if row.Skin < 0 || row.Face < 0 || row.HairStyle < 0 || row.HairColor < 0 ||
		uint8(row.Skin) > race.MaxSkin || uint8(row.Face) > race.MaxFace ||
		uint8(row.HairStyle) > race.MaxHairStyle || uint8(row.HairColor) > race.MaxHairColor {
		return s.fail(LoadInvalidAppearance, "appearance outside race limits")
	}
	return nil
}

func (s *loadState) base() error {
	row := s.batch.Character
	p := s.p
	p.base = Base{
		Name:      row.Name,
		Race:      uint8(row.Race),
		Class:     uint8(row.Class),
		Gender:    uint8(row.Gender),
		Level:     uint8(row.Level),
		XP:        uint32(row.XP),
		Money:     uint64(row.Money),
		Skin:      uint8(row.Skin),
		Face:      uint8(row.Face),
		HairStyle: uint8(row.HairStyle),
		HairColor: uint8(row.HairColor),
		Position: content.Location{
			Map: uint32(row.Map), X: row.X, Y: row.Y, Z: row.Z, O: row.O,
		},
		InstanceID:    uint32(row.InstanceID),
		TransportGUID: row.TransportGuid,
		TaxiPath:      uint32s(row.TaxiPath),
		Health:        uint32(row.Health),
		Power:         uint32(row.Power),
		AtLogin:       uint32(row.AtLogin),
		ExtraFlags:    uint32(row.ExtraFlags),
		TotalTime:     uint32(row.TotalTime),
		LevelTime:     uint32(row.LevelTime),
		LogoutTime:    unixOrZero(row.LogoutTime),
	}
	if row.Level < 1 || (p.cfg.Content.MaxLevel() > 0 && row.Level > int16(p.cfg.Content.MaxLevel())) {
		level := uint8(1)
		if row.Level > 1 {
			level = p.cfg.Content.MaxLevel()
		}
		p.base.Level = level
		p.baseDirty = true
		s.r.fixed("character", "level", row.Level)
	}
	p.difficulties = instance.Difficulties{
		Dungeon:    content.Difficulty(row.DungeonDifficulty),
		Raid:       content.Difficulty(row.RaidDifficulty),
		LegacyRaid: content.Difficulty(row.LegacyRaidDifficulty),
	}
	s.activeGroup = uint8(row.ActiveTalentGroup)
	s.battleground()
	return nil
}

func (s *loadState) battleground() {
	if row := s.batch.Battleground; row != nil {
		bg := *row
		s.p.battleground = &bg
	}
}

func (s *loadState) homebind() error {
	p := s.p
	if row := s.batch.Homebind; row != nil {
		if _, ok := p.cfg.Content.Map(uint32(row.Map)); ok {
			p.homebind = Homebind{
				Location: content.Location{Map: uint32(row.Map), X: row.X, Y: row.Y, Z: row.Z, O: row.O},
				Zone:     uint32(row.Zone),
			}
			return nil
		}
	}
	start, _ := p.cfg.Content.PlayerCreate(p.base.Race, p.base.Class)
	p.homebind = Homebind{Location: start.Start, Zone: start.Zone}
	l := start.Start
	s.r.rewrite("homebind", store.CharRepHomebind, p.guid, int32(l.Map), int32(start.Zone), l.X, l.Y, l.Z, l.O)
	return nil
}

func (s *loadState) group() error {
	row := s.batch.Group
	if row == nil {
		return nil
	}
	p := s.p
	var g *group.Group
	created := true
	if p.cfg.Groups != nil {
		g, created = p.cfg.Groups.Resolve(*row)
	} else {
		g = group.FromRow(*row, p.cfg.Registry, group.WithLogger(p.logger))
	}
	if created {
		if n := g.LoadBinds(s.batch.GroupBinds, s.r.tx); n > 0 {
			s.r.count += n
			repairCount.WithLabelValues("group_bind").Add(float64(n))
		}
	}
	p.group = g
	return nil
}

func (s *loadState) achievements() error {
	for _, row := range s.batch.Achievements {
		s.p.achievements[uint32(row.Achievement)] = unixOrZero(row.Date)
	}
	return nil
}

func (s *loadState) currency() error {
	s.p.currencies.load(s.batch.Currencies, s.r)
	return nil
}

func (s *loadState) skills() error {
	s.p.skills.load(s.batch.Skills, s.r)
	return nil
}

func (s *loadState) spells() error {
	s.p.spells.load(s.p.guid, s.batch.Spells, s.r)
	return nil
}

func (s *loadState) auras() error {
	s.p.auras.load(s.p.guid, s.batch.Auras, s.now, s.r)
	return nil
}

func (s *loadState) talents() error {
	s.p.talents.load(s.p.guid, s.p.base.Class, s.activeGroup, s.batch.Talents, s.r)
	return nil
}

func (s *loadState) glyphs() error {
	s.p.talents.loadGlyphs(s.batch.Glyphs, s.r)
	return nil
}

func (s *loadState) quests() error {
	s.p.quests.load(s.p.guid, s.batch, s.r)
	return nil
}

// inventory loads items and then lets the account collections learn their
// appearances and heirloom upgrades.
func (s *loadState) inventory() error {
	p := s.p
	p.inventory.load(s.batch.Items, s.now, s.r)
	p.inventory.Each(func(it *Item) bool {
		p.collections.AddItemAppearance(it.Entry)
		p.collections.CheckHeirloomUpgrades(it.Entry, p.inventory.HasEntry)
		return true
	})
	return nil
}

func (s *loadState) equipmentSets() error {
	s.p.equipmentSets.load(s.batch.EquipmentSets, s.p.inventory, s.r)
	return nil
}

func (s *loadState) voidStorage() error {
	s.p.void.load(s.batch.VoidStorage, s.r)
	return nil
}

func (s *loadState) mail() error {
	s.p.mail.load(s.batch.Mails, s.now)
	return nil
}

func (s *loadState) actions() error {
	s.p.actions.load(s.p.guid, s.batch.Actions, s.r)
	return nil
}

func (s *loadState) cufProfiles() error {
	s.p.cuf.load(s.batch.CUFProfiles, s.r)
	return nil
}

func (s *loadState) declinedNames() error {
	s.p.declined.load(s.batch.DeclinedName)
	return nil
}

func (s *loadState) instanceTimes() error {
	for _, row := range s.batch.InstanceTimes {
		s.p.times.Load(uint32(row.InstanceID), time.Unix(row.ReleaseTime, 0))
	}
	return nil
}

// binds restores the character's own binds. Binds to maps or difficulties
// the content no longer offers are deleted.
func (s *loadState) binds() error {
	p := s.p
	c := p.cfg.Content
	for _, row := range s.batch.Binds {
		mapID, d := uint32(row.Map), content.Difficulty(row.Difficulty)
		_, mapOK := c.Map(mapID)
		_, diffOK := c.MapDifficulty(mapID, d)
		if !mapOK || !diffOK {
			s.r.delete("bind", store.CharDelBind, p.guid, row.Map, row.Difficulty)
			continue
		}
		save := p.cfg.Registry.Ensure(store.InstanceRow{
			ID:                  row.Instance,
			Map:                 row.Map,
			Difficulty:          row.Difficulty,
			ResetTime:           row.ResetTime,
			CompletedEncounters: row.CompletedEncounters,
			Data:                row.Data,
		})
		p.binds.Load(save, row.Permanent, instance.ExtendState(row.ExtendState))
	}
	return nil
}

func (s *loadState) stats() error {
	s.p.UpdateAllStats()
	return nil
}

// clamp lowers health and power to the recomputed maximums.
func (s *loadState) clamp() error {
	s.p.clampVitals()
	return nil
}
