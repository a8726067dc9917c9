// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package character holds the character aggregate: its load pipeline, its
// incremental save pipeline and the gameplay operations that touch
// persisted state.
//
// A Player is composed of facets (inventory, skills, spells, auras, quests,
// talents, binds, ...), each owning its rows and their lifecycle state. The
// load pipeline fills the facets from a store.LoadBatch in a fixed order;
// the save pipeline asks each facet for the statements its dirty entities
// need. Exactly one session goroutine mutates a Player.
package character

import (
	"log/slog"
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/access"
	"github.com/CypherCore/CypherCore-sub002/internal/collection"
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/group"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Extra flags stored on the character row.
const (
	ExtraFlagGameMaster uint32 = 0x1
)

// Content is the static content the character core reads.
type Content interface {
	instance.Content
	collection.Content
	MaxLevel() uint8
	Quest(id uint32) (content.QuestTemplate, bool)
	Skill(id uint32) (content.SkillInfo, bool)
	Currency(id uint32) (content.CurrencyInfo, bool)
	Talent(id uint32) (content.TalentInfo, bool)
	Race(id uint8) (content.RaceInfo, bool)
	Class(id uint8) (content.ClassInfo, bool)
	PlayerCreate(race, class uint8) (content.PlayerCreateInfo, bool)
	TaxiNode(id uint32) (content.TaxiNode, bool)
	AccessRequirement(mapID uint32, d content.Difficulty) (content.AccessRequirement, bool)
}

// Roster finds characters that are online in this process.
type Roster interface {
	Achiever(guid int64) (access.Achiever, bool)
}

// TransportLocator resolves the current position of a moving transport.
type TransportLocator interface {
	Transport(guid int64) (content.Location, bool)
}

// Config holds the collaborators shared by every Player of a process.
type Config struct {
	Content  Content
	Registry *instance.Registry
	Gate     *instance.Gate
	World    instance.World
	Groups   *group.Directory
	// Names is optional; without it names are not checked on load.
	Names      *NameFilter
	Roster     Roster
	Transports TransportLocator
	Logger     *slog.Logger
	Clock      func() time.Time
	// DeferredRetry is how soon a save postponed by a far teleport is
	// retried.
	DeferredRetry time.Duration
}

// Base holds the fields of the character row.
type Base struct {
	Name          string
	Race          uint8
	Class         uint8
	Gender        uint8
	Level         uint8
	XP            uint32
	Money         uint64
	Skin          uint8
	Face          uint8
	HairStyle     uint8
	HairColor     uint8
	Position      content.Location
	InstanceID    uint32
	TransportGUID int64
	TaxiPath      []uint32
	Health        uint32
	Power         uint32
	AtLogin       uint32
	ExtraFlags    uint32
	TotalTime     uint32
	LevelTime     uint32
	LogoutTime    time.Time
}

// Homebind is the hearthstone destination.
type Homebind struct {
	Location content.Location
	Zone     uint32
}

// Stats are values derived from level, items and auras. They are never
// stored.
type Stats struct {
	MaxHealth uint32
	MaxPower  uint32
	Stamina   int32
	Intellect int32
}

// Player is one character aggregate.
type Player struct {
	cfg    Config
	logger *slog.Logger

	guid    int64
	account int64

	base         Base
	baseDirty    bool
	homebind     Homebind
	homeDirty    bool
	battleground *store.BattlegroundRow
	declined     *DeclinedNames
	difficulties instance.Difficulties
	group        *group.Group
	achievements map[uint32]time.Time
	stats        Stats
	teleport     teleport

	currencies    *Currencies
	skills        *Skills
	spells        *Spells
	auras         *Auras
	talents       *Talents
	quests        *Quests
	inventory     *Inventory
	equipmentSets *EquipmentSets
	actions       *ActionButtons
	void          *VoidStorage
	cuf           *CUFProfiles
	mail          *Mailbox
	binds         *instance.BindStore
	times         *instance.EntryTimes
	collections   *collection.Manager

	// pending holds statements produced by gameplay operations, such as
	// instance creation, until the next save.
	pending *store.Transaction
	// last character-scope transaction built by SaveToDB
	lastChar *store.Transaction
}

// NewPlayer creates an empty aggregate for guid on account. The account's
// collections are shared by every character of the account and loaded
// separately.
func NewPlayer(cfg Config, guid, account int64, coll *collection.Manager) *Player {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.World == nil {
		cfg.World = instance.NoWorld{}
	}
	if coll == nil {
		coll = collection.NewManager(account, cfg.Content, collection.WithLogger(cfg.Logger))
	}
	p := &Player{
		cfg:          cfg,
		logger:       cfg.Logger.With("character_guid", guid),
		guid:         guid,
		account:      account,
		difficulties: instance.DefaultDifficulties,
		achievements: make(map[uint32]time.Time),
		collections:  coll,
		binds:        instance.NewBindStore(cfg.Registry, instance.CharacterOwner(guid)),
		times:        instance.NewEntryTimes(account),
		pending:      store.NewTransaction(store.ScopeCharacter),
	}
	p.currencies = newCurrencies(cfg.Content)
	p.skills = newSkills(cfg.Content)
	p.spells = newSpells(cfg.Content, p.skills)
	p.auras = newAuras(cfg.Content)
	p.talents = newTalents(cfg.Content)
	p.quests = newQuests(cfg.Content)
	p.inventory = newInventory(cfg.Content)
	p.equipmentSets = newEquipmentSets()
	p.actions = newActionButtons()
	p.void = newVoidStorage(cfg.Content)
	p.cuf = newCUFProfiles()
	p.mail = newMailbox()
	p.declined = &DeclinedNames{}
	return p
}

// GUID returns the character guid.
func (p *Player) GUID() int64 { return p.guid }

// Account returns the owning account id.
func (p *Player) Account() int64 { return p.account }

// Base returns a copy of the character row fields.
func (p *Player) Base() Base { return p.base }

// Homebind returns the hearthstone destination.
func (p *Player) Homebind() Homebind { return p.homebind }

// Position returns the current position.
func (p *Player) Position() content.Location { return p.base.Position }

// Stats returns the derived stats of the last UpdateAllStats.
func (p *Player) Stats() Stats { return p.stats }

// Group returns the character's group, if any.
func (p *Player) Group() (*group.Group, bool) { return p.group, p.group != nil }

// Difficulties returns the difficulty selection in effect: the group's
// while grouped, the character's own otherwise.
func (p *Player) Difficulties() instance.Difficulties {
	if p.group != nil {
		return p.group.Difficulties()
	}
	return p.difficulties
}

// Currencies returns the currency facet.
func (p *Player) Currencies() *Currencies { return p.currencies }

// Skills returns the skill facet.
func (p *Player) Skills() *Skills { return p.skills }

// Spells returns the spellbook facet.
func (p *Player) Spells() *Spells { return p.spells }

// Auras returns the aura facet.
func (p *Player) Auras() *Auras { return p.auras }

// Talents returns the talent and glyph facet.
func (p *Player) Talents() *Talents { return p.talents }

// Quests returns the quest log facet.
func (p *Player) Quests() *Quests { return p.quests }

// Inventory returns the item facet.
func (p *Player) Inventory() *Inventory { return p.inventory }

// EquipmentSets returns the saved equipment sets.
func (p *Player) EquipmentSets() *EquipmentSets { return p.equipmentSets }

// ActionButtons returns the action bar facet.
func (p *Player) ActionButtons() *ActionButtons { return p.actions }

// VoidStorage returns the void storage facet.
func (p *Player) VoidStorage() *VoidStorage { return p.void }

// CUFProfiles returns the raid frame profiles.
func (p *Player) CUFProfiles() *CUFProfiles { return p.cuf }

// Mailbox returns the mail headers.
func (p *Player) Mailbox() *Mailbox { return p.mail }

// DeclinedNames returns the declined name forms.
func (p *Player) DeclinedNames() *DeclinedNames { return p.declined }

// Binds returns the character's own instance binds.
func (p *Player) Binds() *instance.BindStore { return p.binds }

// EntryTimes returns the account's recent instance entries.
func (p *Player) EntryTimes() *instance.EntryTimes { return p.times }

// Collections returns the account-wide collections.
func (p *Player) Collections() *collection.Manager { return p.collections }

// Level implements content.Facts.
func (p *Player) Level() uint8 { return p.base.Level }

// Race implements content.Facts.
func (p *Player) Race() uint8 { return p.base.Race }

// Class implements content.Facts.
func (p *Player) Class() uint8 { return p.base.Class }

// HasRewardedQuest implements content.Facts.
func (p *Player) HasRewardedQuest(id uint32) bool { return p.quests.IsRewarded(id) }

// HasAura implements content.Facts.
func (p *Player) HasAura(spell uint32) bool { return p.auras.HasSpell(spell) }

// HasItem implements content.Facts.
func (p *Player) HasItem(entry uint32) bool { return p.inventory.HasEntry(entry) }

// HasAchievement implements content.Facts.
func (p *Player) HasAchievement(id uint32) bool {
	_, ok := p.achievements[id]
	return ok
}

// HasSpell reports whether the spell is usable: learned and not replaced
// by an active talent, or granted by an active talent.
func (p *Player) HasSpell(spell uint32) bool {
	if p.talents.Grants(spell) {
		return true
	}
	return p.spells.Has(spell) && !p.talents.Overrides(spell)
}

// GameMaster implements access.Subject.
func (p *Player) GameMaster() bool { return p.base.ExtraFlags&ExtraFlagGameMaster != 0 }

// Faction implements access.Subject.
func (p *Player) Faction() content.Faction {
	if r, ok := p.cfg.Content.Race(p.base.Race); ok {
		return r.Faction
	}
	return content.FactionAlliance
}

// SetLevel changes the level and recomputes stats.
func (p *Player) SetLevel(level uint8) {
	if level == 0 {
		level = 1
	}
	if limit := p.cfg.Content.MaxLevel(); limit > 0 && level > limit {
		level = limit
	}
	if level == p.base.Level {
		return
	}
	p.base.Level = level
	p.base.LevelTime = 0
	p.baseDirty = true
	p.UpdateAllStats()
}

// ModifyMoney adds delta copper, refusing to go below zero.
func (p *Player) ModifyMoney(delta int64) bool {
	if delta < 0 && uint64(-delta) > p.base.Money {
		return false
	}
	if delta == 0 {
		return true
	}
	p.base.Money = uint64(int64(p.base.Money) + delta)
	p.baseDirty = true
	return true
}

// SetHomebind moves the hearthstone destination.
func (p *Player) SetHomebind(loc content.Location, zone uint32) {
	p.homebind = Homebind{Location: loc, Zone: zone}
	p.homeDirty = true
}

// SetGameMaster toggles game master mode.
func (p *Player) SetGameMaster(on bool) {
	flags := p.base.ExtraFlags &^ ExtraFlagGameMaster
	if on {
		flags |= ExtraFlagGameMaster
	}
	if flags != p.base.ExtraFlags {
		p.base.ExtraFlags = flags
		p.baseDirty = true
	}
}

func (p *Player) now() time.Time { return p.cfg.Clock() }

var (
	_ content.Facts  = (*Player)(nil)
	_ access.Subject = (*Player)(nil)
	_ access.Achiever = (*Player)(nil)
)
