// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package content holds the static game-content tables consulted by the
// character core: maps, difficulties, templates, spawn points and entry
// requirements. Tables are read once from a YAML file and never mutated.
package content

// Location is a position on a map.
type Location struct {
	Map uint32  `yaml:"map" json:"map"`
	X   float32 `yaml:"x" json:"x"`
	Y   float32 `yaml:"y" json:"y"`
	Z   float32 `yaml:"z" json:"z"`
	O   float32 `yaml:"o,omitempty" json:"o,omitempty"`
}

// MapType classifies a map.
type MapType string

// Map types.
const (
	MapCommon       MapType = "common"
	MapDungeon      MapType = "dungeon"
	MapRaid         MapType = "raid"
	MapBattleground MapType = "battleground"
	MapArena        MapType = "arena"
)

// MapInfo describes one map.
type MapInfo struct {
	ID   uint32  `yaml:"id" json:"id"`
	Name string  `yaml:"name" json:"name"`
	Type MapType `yaml:"type" json:"type" jsonschema:"enum=common,enum=dungeon,enum=raid,enum=battleground,enum=arena"`
	// Entrance is where a player lands when the instance itself cannot be entered.
	Entrance *Location `yaml:"entrance,omitempty" json:"entrance,omitempty"`
}

// IsInstance reports whether the map is instanced per group.
func (m MapInfo) IsInstance() bool {
	return m.Type != MapCommon
}

// IsDungeon reports whether the map is a dungeon or raid.
func (m MapInfo) IsDungeon() bool {
	return m.Type == MapDungeon || m.Type == MapRaid
}

// IsRaid reports whether the map is a raid.
func (m MapInfo) IsRaid() bool {
	return m.Type == MapRaid
}

// IsBattleground reports whether the map is a battleground or arena.
func (m MapInfo) IsBattleground() bool {
	return m.Type == MapBattleground || m.Type == MapArena
}

// Difficulty identifies an instance difficulty.
type Difficulty uint8

// Well-known difficulties.
const (
	DifficultyNone       Difficulty = 0
	DifficultyNormal     Difficulty = 1
	DifficultyHeroic     Difficulty = 2
	Difficulty10N        Difficulty = 3
	Difficulty25N        Difficulty = 4
	Difficulty10HC       Difficulty = 5
	Difficulty25HC       Difficulty = 6
	DifficultyNormalRaid Difficulty = 14
	DifficultyHeroicRaid Difficulty = 15
	DifficultyMythicRaid Difficulty = 16
	DifficultyMythic     Difficulty = 23
)

// DifficultyInfo describes a difficulty.
type DifficultyInfo struct {
	ID     Difficulty `yaml:"id" json:"id"`
	Name   string     `yaml:"name" json:"name"`
	Heroic bool       `yaml:"heroic,omitempty" json:"heroic,omitempty"`
	Raid   bool       `yaml:"raid,omitempty" json:"raid,omitempty"`
}

// MapDifficulty enables a difficulty for a map.
type MapDifficulty struct {
	Map        uint32     `yaml:"map" json:"map"`
	Difficulty Difficulty `yaml:"difficulty" json:"difficulty"`
	MaxPlayers uint32     `yaml:"max_players" json:"max_players"`
	// ResetSeconds is the lock period; zero means binds never carry a lockout.
	ResetSeconds int64 `yaml:"reset_seconds,omitempty" json:"reset_seconds,omitempty"`
}

// ItemTemplate is the static definition of an item.
type ItemTemplate struct {
	ID   uint32 `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	// DurationSeconds limits the lifetime of conjured items; zero is unlimited.
	DurationSeconds uint32 `yaml:"duration_seconds,omitempty" json:"duration_seconds,omitempty"`
	ContainerSlots  uint8  `yaml:"container_slots,omitempty" json:"container_slots,omitempty"`
	Stamina         int32  `yaml:"stamina,omitempty" json:"stamina,omitempty"`
	Intellect       int32  `yaml:"intellect,omitempty" json:"intellect,omitempty"`
	Appearance      uint32 `yaml:"appearance,omitempty" json:"appearance,omitempty"`
	Toy             bool   `yaml:"toy,omitempty" json:"toy,omitempty"`
}

// HeirloomInfo describes an heirloom and its upgrade chain.
type HeirloomInfo struct {
	Item uint32 `yaml:"item" json:"item"`
	// StaticUpgradedItem is the next item of the heirloom's difficulty chain.
	StaticUpgradedItem uint32 `yaml:"static_upgraded_item,omitempty" json:"static_upgraded_item,omitempty"`
	// UpgradeItems are the upgrade tokens, lowest level first.
	UpgradeItems []uint32 `yaml:"upgrade_items,omitempty" json:"upgrade_items,omitempty"`
}

// QuestTemplate is the static definition of a quest.
type QuestTemplate struct {
	ID          uint32 `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	RewardSpell uint32 `yaml:"reward_spell,omitempty" json:"reward_spell,omitempty"`
}

// SpellInfo is the static definition of a spell.
type SpellInfo struct {
	ID   uint32 `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	// Stamina and MaxHealth apply while an aura of this spell is active.
	Stamina   int32 `yaml:"stamina,omitempty" json:"stamina,omitempty"`
	MaxHealth int32 `yaml:"max_health,omitempty" json:"max_health,omitempty"`
	MaxPower  int32 `yaml:"max_power,omitempty" json:"max_power,omitempty"`
	Mount     bool  `yaml:"mount,omitempty" json:"mount,omitempty"`
	// SkillLine, when set, is the skill that teaches the spell.
	SkillLine uint32 `yaml:"skill_line,omitempty" json:"skill_line,omitempty"`
}

// SkillInfo is the static definition of a skill line.
type SkillInfo struct {
	ID       uint32 `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	MaxValue uint16 `yaml:"max_value" json:"max_value"`
}

// CurrencyInfo is the static definition of a currency.
type CurrencyInfo struct {
	ID          uint32 `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	MaxQuantity uint32 `yaml:"max_quantity,omitempty" json:"max_quantity,omitempty"`
}

// TalentInfo is the static definition of a talent.
type TalentInfo struct {
	ID    uint32 `yaml:"id" json:"id"`
	Class uint8  `yaml:"class" json:"class"`
	Spell uint32 `yaml:"spell" json:"spell"`
	// OverridesSpell is replaced in the spellbook while the talent is active.
	OverridesSpell uint32 `yaml:"overrides_spell,omitempty" json:"overrides_spell,omitempty"`
}

// Faction is a player faction.
type Faction string

// Factions.
const (
	FactionAlliance Faction = "alliance"
	FactionHorde    Faction = "horde"
)

// RaceInfo is the static definition of a race with its appearance limits.
type RaceInfo struct {
	ID           uint8   `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	Faction      Faction `yaml:"faction" json:"faction" jsonschema:"enum=alliance,enum=horde"`
	MaxSkin      uint8   `yaml:"max_skin" json:"max_skin"`
	MaxFace      uint8   `yaml:"max_face" json:"max_face"`
	MaxHairStyle uint8   `yaml:"max_hair_style" json:"max_hair_style"`
	MaxHairColor uint8   `yaml:"max_hair_color" json:"max_hair_color"`
}

// ClassInfo holds class base stats.
type ClassInfo struct {
	ID             uint8  `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	BaseHealth     uint32 `yaml:"base_health" json:"base_health"`
	HealthPerLevel uint32 `yaml:"health_per_level" json:"health_per_level"`
	BasePower      uint32 `yaml:"base_power" json:"base_power"`
	PowerPerLevel  uint32 `yaml:"power_per_level" json:"power_per_level"`
}

// PlayerCreateInfo is the starting position of a race and class pair. A
// pair without one is not playable.
type PlayerCreateInfo struct {
	Race  uint8    `yaml:"race" json:"race"`
	Class uint8    `yaml:"class" json:"class"`
	Zone  uint32   `yaml:"zone" json:"zone"`
	Start Location `yaml:"start" json:"start"`
}

// TaxiNode is a flight master location.
type TaxiNode struct {
	ID       uint32   `yaml:"id" json:"id"`
	Location Location `yaml:"location" json:"location"`
}

// AccessRequirement gates entry to a map and difficulty.
type AccessRequirement struct {
	Map           uint32     `yaml:"map" json:"map"`
	Difficulty    Difficulty `yaml:"difficulty" json:"difficulty"`
	LevelMin      uint8      `yaml:"level_min,omitempty" json:"level_min,omitempty"`
	LevelMax      uint8      `yaml:"level_max,omitempty" json:"level_max,omitempty"`
	Item          uint32     `yaml:"item,omitempty" json:"item,omitempty"`
	Item2         uint32     `yaml:"item2,omitempty" json:"item2,omitempty"`
	QuestAlliance uint32     `yaml:"quest_alliance,omitempty" json:"quest_alliance,omitempty"`
	QuestHorde    uint32     `yaml:"quest_horde,omitempty" json:"quest_horde,omitempty"`
	Achievement   uint32     `yaml:"achievement,omitempty" json:"achievement,omitempty"`
	Message       string     `yaml:"message,omitempty" json:"message,omitempty"`
	// Condition is an expression such as "level >= 30 && quest(1234)".
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`

	compiled *Condition
}

// Check returns the compiled condition, or nil when the requirement has none.
func (r AccessRequirement) Check() *Condition {
	return r.compiled
}

// File is the document layout of a content file.
type File struct {
	Version            string              `yaml:"version" json:"version"`
	MaxLevel           uint8               `yaml:"max_level" json:"max_level"`
	Maps               []MapInfo           `yaml:"maps" json:"maps"`
	Difficulties       []DifficultyInfo    `yaml:"difficulties" json:"difficulties"`
	MapDifficulties    []MapDifficulty     `yaml:"map_difficulties,omitempty" json:"map_difficulties,omitempty"`
	Items              []ItemTemplate      `yaml:"items,omitempty" json:"items,omitempty"`
	Heirlooms          []HeirloomInfo      `yaml:"heirlooms,omitempty" json:"heirlooms,omitempty"`
	Quests             []QuestTemplate     `yaml:"quests,omitempty" json:"quests,omitempty"`
	Spells             []SpellInfo         `yaml:"spells,omitempty" json:"spells,omitempty"`
	Skills             []SkillInfo         `yaml:"skills,omitempty" json:"skills,omitempty"`
	Currencies         []CurrencyInfo      `yaml:"currencies,omitempty" json:"currencies,omitempty"`
	Talents            []TalentInfo        `yaml:"talents,omitempty" json:"talents,omitempty"`
	Races              []RaceInfo          `yaml:"races" json:"races"`
	Classes            []ClassInfo         `yaml:"classes" json:"classes"`
	PlayerCreate       []PlayerCreateInfo  `yaml:"player_create" json:"player_create"`
	TaxiNodes          []TaxiNode          `yaml:"taxi_nodes,omitempty" json:"taxi_nodes,omitempty"`
	AccessRequirements []AccessRequirement `yaml:"access_requirements,omitempty" json:"access_requirements,omitempty"`
	TransmogIllusions  []uint32            `yaml:"transmog_illusions,omitempty" json:"transmog_illusions,omitempty"`
}
