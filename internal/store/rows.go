// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package store

// Row types mirror the column layout of the load queries. They carry raw
// database values; the character package validates and converts them.

// CharacterRow is the identity and base-attribute row of a character.
type CharacterRow struct {
	Guid                 int64
	Account              int64
	Name                 string
	Race                 int16
	Class                int16
	Gender               int16
	Level                int16
	XP                   int32
	Money                int64
	Skin                 int16
	Face                 int16
	HairStyle            int16
	HairColor            int16
	Map                  int32
	InstanceID           int32
	DungeonDifficulty    int16
	RaidDifficulty       int16
	LegacyRaidDifficulty int16
	X                    float32
	Y                    float32
	Z                    float32
	O                    float32
	TransportGuid        int64
	TaxiPath             []int32
	Health               int32
	Power                int32
	AtLogin              int32
	ExtraFlags           int32
	ActiveTalentGroup    int16
	TotalTime            int32
	LevelTime            int32
	LogoutTime           int64
}

// PositionRow is a saved map position.
type PositionRow struct {
	Map int32
	X   float32
	Y   float32
	Z   float32
	O   float32
}

// HomebindRow is the character's hearthstone location.
type HomebindRow struct {
	PositionRow
	Zone int32
}

// BattlegroundRow is the position a character returns to when leaving a
// battleground.
type BattlegroundRow struct {
	PositionRow
	InstanceID int32
	Team       int16
}

// GroupRow is the group the character belongs to, if any.
type GroupRow struct {
	Guid                 int64
	LeaderGuid           int64
	GroupType            int16
	DungeonDifficulty    int16
	RaidDifficulty       int16
	LegacyRaidDifficulty int16
}

// DeclinedNameRow holds the five declined name forms.
type DeclinedNameRow struct {
	Names [5]string
}

// CurrencyRow is one character_currency row.
type CurrencyRow struct {
	Currency        int32
	Quantity        int32
	WeeklyQuantity  int32
	TrackedQuantity int32
	Flags           int16
}

// SkillRow is one character_skills row.
type SkillRow struct {
	Skill int32
	Value int32
	Max   int32
}

// SpellRow is one character_spell row.
type SpellRow struct {
	Spell    int32
	Active   bool
	Disabled bool
}

// AuraRow is one character_aura row with its effect amounts.
type AuraRow struct {
	CasterGuid      int64
	ItemGuid        int64
	Spell           int32
	EffectMask      int32
	RecalculateMask int32
	StackCount      int16
	MaxDuration     int32
	// ExpiresAt is in unix milliseconds, zero for an aura that never ends.
	ExpiresAt       int64
	RemainCharges   int16
	Amounts         []int32
}

// TalentRow is one character_talent row.
type TalentRow struct {
	TalentID    int32
	TalentGroup int16
}

// GlyphRow is one character_glyphs row.
type GlyphRow struct {
	TalentGroup int16
	GlyphID     int32
}

// QuestStatusRow is one character_queststatus row.
type QuestStatusRow struct {
	Quest      int32
	Status     int16
	Explored   bool
	AcceptTime int64
	EndTime    int64
	Objectives []int32
}

// QuestRewardedRow is one character_queststatus_rewarded row.
type QuestRewardedRow struct {
	Quest  int32
	Active bool
}

// DailyQuestRow is one character_queststatus_daily row.
type DailyQuestRow struct {
	Quest int32
	Time  int64
}

// ItemRow is an item_instance row joined with its inventory slot.
type ItemRow struct {
	Guid               int64
	Entry              int32
	Creator            int64
	Count              int32
	// ExpiresAt is in unix seconds, zero for an item without a lifetime.
	ExpiresAt          int64
	Charges            []int32
	Flags              int32
	Durability         int32
	PlayTime           int32
	TransmogAppearance int32
	RefundDeadline     int64
	Bag                int64
	Slot               int16
}

// EquipmentSetRow is one character_equipmentsets row.
type EquipmentSetRow struct {
	SetGuid    int64
	SetIndex   int16
	Name       string
	IconName   string
	IgnoreMask int32
	Items      []int64
}

// ActionRow is one character_action row.
type ActionRow struct {
	Spec   int16
	Button int16
	Action int64
	Type   int16
}

// VoidItemRow is one character_void_storage row.
type VoidItemRow struct {
	ItemID      int64
	Entry       int32
	Slot        int16
	Creator     int64
	RandomBonus int32
}

// CUFProfileRow is one character_cuf_profiles row.
type CUFProfileRow struct {
	ID          int16
	Name        string
	FrameHeight int16
	FrameWidth  int16
	SortBy      int16
	HealthText  int16
	BoolOptions int64
}

// MailRow is a mail header.
type MailRow struct {
	ID          int64
	Sender      int64
	Subject     string
	Money       int64
	DeliverTime int64
	ExpireTime  int64
	Checked     int32
}

// BindRow is a character_instance row joined with its instance record.
type BindRow struct {
	Map                 int32
	Difficulty          int16
	Instance            int32
	Permanent           bool
	ExtendState         int16
	ResetTime           int64
	CompletedEncounters int32
	Data                string
}

// GroupBindRow is a group_instance row joined with its instance record.
type GroupBindRow struct {
	Map                 int32
	Difficulty          int16
	Instance            int32
	Permanent           bool
	ResetTime           int64
	CompletedEncounters int32
	Data                string
}

// InstanceRow is one instance record.
type InstanceRow struct {
	ID                  int32
	Map                 int32
	Difficulty          int16
	ResetTime           int64
	CompletedEncounters int32
	Data                string
}

// InstanceTimeRow records when an entered instance stops counting against
// the hourly entry limit.
type InstanceTimeRow struct {
	InstanceID  int32
	ReleaseTime int64
}

// AchievementRow is one completed achievement.
type AchievementRow struct {
	Achievement int32
	Date        int64
}

// ToyRow is one account_toys row.
type ToyRow struct {
	ItemID    int32
	Favourite bool
	Fanfare   bool
}

// HeirloomRow is one account_heirlooms row.
type HeirloomRow struct {
	ItemID int32
	Flags  int32
}

// MountRow is one account_mounts row.
type MountRow struct {
	SpellID int32
	Flags   int16
}

// BlockRow is one packed bitset block.
type BlockRow struct {
	Index int16
	Mask  int64
}

// LoadBatch holds every result set needed to build one character. A nil
// pointer field means the query returned no row.
type LoadBatch struct {
	Character     *CharacterRow
	Banned        bool
	Homebind      *HomebindRow
	Battleground  *BattlegroundRow
	Group         *GroupRow
	GroupBinds    []GroupBindRow
	DeclinedName  *DeclinedNameRow
	Currencies    []CurrencyRow
	Skills        []SkillRow
	Spells        []SpellRow
	Auras         []AuraRow
	Talents       []TalentRow
	Glyphs        []GlyphRow
	QuestStatus   []QuestStatusRow
	QuestRewarded []QuestRewardedRow
	DailyQuests   []DailyQuestRow
	WeeklyQuests  []int32
	Items         []ItemRow
	EquipmentSets []EquipmentSetRow
	Actions       []ActionRow
	VoidStorage   []VoidItemRow
	CUFProfiles   []CUFProfileRow
	Mails         []MailRow
	Binds         []BindRow
	InstanceTimes []InstanceTimeRow
	Achievements  []AchievementRow
}

// AccountBatch holds the account-global result sets.
type AccountBatch struct {
	Toys                []ToyRow
	Heirlooms           []HeirloomRow
	Mounts              []MountRow
	Appearances         []BlockRow
	FavoriteAppearances []int32
	Illusions           []BlockRow
}
