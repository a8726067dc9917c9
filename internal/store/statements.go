// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package store

import "fmt"

// Scope names the database a statement belongs to. The login database holds
// account-global data; the character database holds everything keyed to a
// single character.
type Scope uint8

// Database scopes.
const (
	ScopeCharacter Scope = iota
	ScopeLogin
)

// String returns the scope name used in logs and metrics.
func (s Scope) String() string {
	switch s {
	case ScopeCharacter:
		return "character"
	case ScopeLogin:
		return "login"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// StatementID identifies a prepared data-modification statement.
type StatementID uint16

// Character database statements.
const (
	CharInsCharacter StatementID = iota + 1
	CharUpdCharacter
	CharRepHomebind
	CharDelBattlegroundData
	CharDelDeclinedName
	CharInsDeclinedName

	CharInsCurrency
	CharUpdCurrency

	CharInsSkill
	CharUpdSkill
	CharDelSkill

	CharInsSpell
	CharUpdSpell
	CharDelSpell

	CharInsAura
	CharUpdAura
	CharDelAura

	CharInsTalent
	CharDelTalent
	CharDelGlyphs
	CharInsGlyph

	CharInsQuestStatus
	CharUpdQuestStatus
	CharDelQuestStatus
	CharInsQuestRewarded
	CharDelQuestRewarded
	CharDelDailyQuests
	CharInsDailyQuest
	CharDelWeeklyQuests
	CharInsWeeklyQuest

	CharRepItem
	CharDelInventoryItem
	CharDelItem

	CharInsEquipmentSet
	CharUpdEquipmentSet
	CharDelEquipmentSet

	CharInsAction
	CharUpdAction
	CharDelAction

	CharRepVoidItem
	CharDelVoidItem

	CharDelCUFProfiles
	CharInsCUFProfile

	CharUpdMailChecked
	CharDelMail

	CharInsBind
	CharUpdBind
	CharDelBind

	CharInsInstance
	CharUpdInstanceResetTime
	CharDelInstance
	CharDelExpiredBinds
	CharUpdBindsRollover

	CharInsGroupBind
	CharUpdGroupBind
	CharDelGroupBind
	CharDelGroupBindsByInstance

	CharDelInstanceTimes
	CharInsInstanceTime

	charStatementEnd
)

// Login database statements.
const (
	LoginRepToy StatementID = iota + 1000
	LoginRepHeirloom
	LoginRepMount
	LoginRepAppearanceBlock
	LoginDelAppearanceBlock
	LoginInsFavoriteAppearance
	LoginDelFavoriteAppearance
	LoginRepIllusionBlock
	LoginDelIllusionBlock

	loginStatementEnd
)

type statementDef struct {
	name  string
	scope Scope
	sql   string
}

var statements = map[StatementID]statementDef{
	CharInsCharacter: {"CharInsCharacter", ScopeCharacter, `
		INSERT INTO characters (guid, account, name, race, class, gender, level, xp, money,
			skin, face, hair_style, hair_color, map, instance_id, dungeon_difficulty,
			raid_difficulty, legacy_raid_difficulty, position_x, position_y, position_z,
			orientation, transport_guid, taxi_path, health, power, at_login, extra_flags,
			active_talent_group, total_time, level_time, logout_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)`},
	CharUpdCharacter: {"CharUpdCharacter", ScopeCharacter, `
		UPDATE characters SET name = $2, race = $3, class = $4, gender = $5, level = $6,
			xp = $7, money = $8, skin = $9, face = $10, hair_style = $11, hair_color = $12,
			map = $13, instance_id = $14, dungeon_difficulty = $15, raid_difficulty = $16,
			legacy_raid_difficulty = $17, position_x = $18, position_y = $19, position_z = $20,
			orientation = $21, transport_guid = $22, taxi_path = $23, health = $24, power = $25,
			at_login = $26, extra_flags = $27, active_talent_group = $28, total_time = $29,
			level_time = $30, logout_time = $31
		WHERE guid = $1`},
	CharRepHomebind: {"CharRepHomebind", ScopeCharacter, `
		INSERT INTO character_homebind (guid, map, zone, position_x, position_y, position_z, orientation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (guid) DO UPDATE SET map = $2, zone = $3, position_x = $4,
			position_y = $5, position_z = $6, orientation = $7`},
	CharDelBattlegroundData: {"CharDelBattlegroundData", ScopeCharacter,
		`DELETE FROM character_battleground_data WHERE guid = $1`},
	CharDelDeclinedName: {"CharDelDeclinedName", ScopeCharacter,
		`DELETE FROM character_declinedname WHERE guid = $1`},
	CharInsDeclinedName: {"CharInsDeclinedName", ScopeCharacter, `
		INSERT INTO character_declinedname (guid, genitive, dative, accusative, instrumental, prepositional)
		VALUES ($1, $2, $3, $4, $5, $6)`},

	CharInsCurrency: {"CharInsCurrency", ScopeCharacter, `
		INSERT INTO character_currency (guid, currency, quantity, weekly_quantity, tracked_quantity, flags)
		VALUES ($1, $2, $3, $4, $5, $6)`},
	CharUpdCurrency: {"CharUpdCurrency", ScopeCharacter, `
		UPDATE character_currency SET quantity = $3, weekly_quantity = $4, tracked_quantity = $5, flags = $6
		WHERE guid = $1 AND currency = $2`},

	CharInsSkill: {"CharInsSkill", ScopeCharacter,
		`INSERT INTO character_skills (guid, skill, value, max) VALUES ($1, $2, $3, $4)`},
	CharUpdSkill: {"CharUpdSkill", ScopeCharacter,
		`UPDATE character_skills SET value = $3, max = $4 WHERE guid = $1 AND skill = $2`},
	CharDelSkill: {"CharDelSkill", ScopeCharacter,
		`DELETE FROM character_skills WHERE guid = $1 AND skill = $2`},

	CharInsSpell: {"CharInsSpell", ScopeCharacter,
		`INSERT INTO character_spell (guid, spell, active, disabled) VALUES ($1, $2, $3, $4)`},
	CharUpdSpell: {"CharUpdSpell", ScopeCharacter,
		`UPDATE character_spell SET active = $3, disabled = $4 WHERE guid = $1 AND spell = $2`},
	CharDelSpell: {"CharDelSpell", ScopeCharacter,
		`DELETE FROM character_spell WHERE guid = $1 AND spell = $2`},

	CharInsAura: {"CharInsAura", ScopeCharacter, `
		INSERT INTO character_aura (guid, caster_guid, item_guid, spell, effect_mask, recalculate_mask,
			stack_count, max_duration, expires_at, remain_charges, amounts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`},
	CharUpdAura: {"CharUpdAura", ScopeCharacter, `
		UPDATE character_aura SET item_guid = $5, recalculate_mask = $6, stack_count = $7,
			max_duration = $8, expires_at = $9, remain_charges = $10, amounts = $11
		WHERE guid = $1 AND caster_guid = $2 AND spell = $3 AND effect_mask = $4`},
	CharDelAura: {"CharDelAura", ScopeCharacter,
		`DELETE FROM character_aura WHERE guid = $1 AND caster_guid = $2 AND spell = $3 AND effect_mask = $4`},

	CharInsTalent: {"CharInsTalent", ScopeCharacter,
		`INSERT INTO character_talent (guid, talent_id, talent_group) VALUES ($1, $2, $3)`},
	CharDelTalent: {"CharDelTalent", ScopeCharacter,
		`DELETE FROM character_talent WHERE guid = $1 AND talent_id = $2 AND talent_group = $3`},
	CharDelGlyphs: {"CharDelGlyphs", ScopeCharacter,
		`DELETE FROM character_glyphs WHERE guid = $1`},
	CharInsGlyph: {"CharInsGlyph", ScopeCharacter,
		`INSERT INTO character_glyphs (guid, talent_group, glyph_id) VALUES ($1, $2, $3)`},

	CharInsQuestStatus: {"CharInsQuestStatus", ScopeCharacter, `
		INSERT INTO character_queststatus (guid, quest, status, explored, accept_time, end_time, objectives)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`},
	CharUpdQuestStatus: {"CharUpdQuestStatus", ScopeCharacter, `
		UPDATE character_queststatus SET status = $3, explored = $4, accept_time = $5, end_time = $6, objectives = $7
		WHERE guid = $1 AND quest = $2`},
	CharDelQuestStatus: {"CharDelQuestStatus", ScopeCharacter,
		`DELETE FROM character_queststatus WHERE guid = $1 AND quest = $2`},
	CharInsQuestRewarded: {"CharInsQuestRewarded", ScopeCharacter,
		`INSERT INTO character_queststatus_rewarded (guid, quest, active) VALUES ($1, $2, TRUE)`},
	CharDelQuestRewarded: {"CharDelQuestRewarded", ScopeCharacter,
		`DELETE FROM character_queststatus_rewarded WHERE guid = $1 AND quest = $2`},
	CharDelDailyQuests: {"CharDelDailyQuests", ScopeCharacter,
		`DELETE FROM character_queststatus_daily WHERE guid = $1`},
	CharInsDailyQuest: {"CharInsDailyQuest", ScopeCharacter,
		`INSERT INTO character_queststatus_daily (guid, quest, time) VALUES ($1, $2, $3)`},
	CharDelWeeklyQuests: {"CharDelWeeklyQuests", ScopeCharacter,
		`DELETE FROM character_queststatus_weekly WHERE guid = $1`},
	CharInsWeeklyQuest: {"CharInsWeeklyQuest", ScopeCharacter,
		`INSERT INTO character_queststatus_weekly (guid, quest) VALUES ($1, $2)`},

	// One statement per item keeps the item row and its slot row in step.
	CharRepItem: {"CharRepItem", ScopeCharacter, `
		WITH item AS (
			INSERT INTO item_instance (guid, item_entry, owner_guid, creator_guid, count, expires_at,
				charges, flags, durability, play_time, transmog_appearance, refund_deadline)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (guid) DO UPDATE SET owner_guid = $3, count = $5, expires_at = $6,
				charges = $7, flags = $8, durability = $9, play_time = $10,
				transmog_appearance = $11, refund_deadline = $12
			RETURNING guid
		)
		INSERT INTO character_inventory (guid, bag, slot, item)
		SELECT $3, $13, $14, guid FROM item
		ON CONFLICT (item) DO UPDATE SET guid = $3, bag = $13, slot = $14`},
	CharDelInventoryItem: {"CharDelInventoryItem", ScopeCharacter,
		`DELETE FROM character_inventory WHERE item = $1`},
	CharDelItem: {"CharDelItem", ScopeCharacter,
		`DELETE FROM item_instance WHERE guid = $1`},

	CharInsEquipmentSet: {"CharInsEquipmentSet", ScopeCharacter, `
		INSERT INTO character_equipmentsets (guid, setguid, setindex, name, iconname, ignore_mask, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`},
	CharUpdEquipmentSet: {"CharUpdEquipmentSet", ScopeCharacter, `
		UPDATE character_equipmentsets SET setindex = $3, name = $4, iconname = $5, ignore_mask = $6, items = $7
		WHERE guid = $1 AND setguid = $2`},
	CharDelEquipmentSet: {"CharDelEquipmentSet", ScopeCharacter,
		`DELETE FROM character_equipmentsets WHERE setguid = $1`},

	CharInsAction: {"CharInsAction", ScopeCharacter,
		`INSERT INTO character_action (guid, spec, button, action, type) VALUES ($1, $2, $3, $4, $5)`},
	CharUpdAction: {"CharUpdAction", ScopeCharacter,
		`UPDATE character_action SET action = $4, type = $5 WHERE guid = $1 AND spec = $2 AND button = $3`},
	CharDelAction: {"CharDelAction", ScopeCharacter,
		`DELETE FROM character_action WHERE guid = $1 AND spec = $2 AND button = $3`},

	CharRepVoidItem: {"CharRepVoidItem", ScopeCharacter, `
		INSERT INTO character_void_storage (item_id, player_guid, item_entry, slot, creator_guid, random_bonus)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (item_id) DO UPDATE SET slot = $4, creator_guid = $5, random_bonus = $6`},
	CharDelVoidItem: {"CharDelVoidItem", ScopeCharacter,
		`DELETE FROM character_void_storage WHERE item_id = $1`},

	CharDelCUFProfiles: {"CharDelCUFProfiles", ScopeCharacter,
		`DELETE FROM character_cuf_profiles WHERE guid = $1`},
	CharInsCUFProfile: {"CharInsCUFProfile", ScopeCharacter, `
		INSERT INTO character_cuf_profiles (guid, id, name, frame_height, frame_width, sort_by, health_text, bool_options)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`},

	CharUpdMailChecked: {"CharUpdMailChecked", ScopeCharacter,
		`UPDATE mail SET checked = $2 WHERE id = $1`},
	CharDelMail: {"CharDelMail", ScopeCharacter,
		`DELETE FROM mail WHERE id = $1`},

	CharInsBind: {"CharInsBind", ScopeCharacter, `
		INSERT INTO character_instance (guid, map, difficulty, instance, permanent, extend_state)
		VALUES ($1, $2, $3, $4, $5, $6)`},
	CharUpdBind: {"CharUpdBind", ScopeCharacter, `
		UPDATE character_instance SET instance = $4, permanent = $5, extend_state = $6
		WHERE guid = $1 AND map = $2 AND difficulty = $3`},
	CharDelBind: {"CharDelBind", ScopeCharacter,
		`DELETE FROM character_instance WHERE guid = $1 AND map = $2 AND difficulty = $3`},

	CharInsInstance: {"CharInsInstance", ScopeCharacter, `
		INSERT INTO instance (id, map, difficulty, resettime, completed_encounters, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`},
	CharUpdInstanceResetTime: {"CharUpdInstanceResetTime", ScopeCharacter,
		`UPDATE instance SET resettime = $2 WHERE id = $1`},
	CharDelInstance: {"CharDelInstance", ScopeCharacter,
		`DELETE FROM instance WHERE id = $1`},
	CharDelExpiredBinds: {"CharDelExpiredBinds", ScopeCharacter,
		`DELETE FROM character_instance WHERE instance = $1 AND extend_state = 0`},
	CharUpdBindsRollover: {"CharUpdBindsRollover", ScopeCharacter,
		`UPDATE character_instance SET extend_state = extend_state - 1 WHERE instance = $1 AND extend_state > 0`},

	CharInsGroupBind: {"CharInsGroupBind", ScopeCharacter, `
		INSERT INTO group_instance (group_guid, map, difficulty, instance, permanent)
		VALUES ($1, $2, $3, $4, $5)`},
	CharUpdGroupBind: {"CharUpdGroupBind", ScopeCharacter, `
		UPDATE group_instance SET instance = $4, permanent = $5
		WHERE group_guid = $1 AND map = $2 AND difficulty = $3`},
	CharDelGroupBind: {"CharDelGroupBind", ScopeCharacter,
		`DELETE FROM group_instance WHERE group_guid = $1 AND map = $2 AND difficulty = $3`},
	CharDelGroupBindsByInstance: {"CharDelGroupBindsByInstance", ScopeCharacter,
		`DELETE FROM group_instance WHERE instance = $1`},

	CharDelInstanceTimes: {"CharDelInstanceTimes", ScopeCharacter,
		`DELETE FROM account_instance_times WHERE account = $1`},
	CharInsInstanceTime: {"CharInsInstanceTime", ScopeCharacter,
		`INSERT INTO account_instance_times (account, instance_id, release_time) VALUES ($1, $2, $3)`},

	LoginRepToy: {"LoginRepToy", ScopeLogin, `
		INSERT INTO account_toys (account, item_id, is_favourite, has_fanfare) VALUES ($1, $2, $3, $4)
		ON CONFLICT (account, item_id) DO UPDATE SET is_favourite = $3, has_fanfare = $4`},
	LoginRepHeirloom: {"LoginRepHeirloom", ScopeLogin, `
		INSERT INTO account_heirlooms (account, item_id, flags) VALUES ($1, $2, $3)
		ON CONFLICT (account, item_id) DO UPDATE SET flags = $3`},
	LoginRepMount: {"LoginRepMount", ScopeLogin, `
		INSERT INTO account_mounts (account, mount_spell_id, flags) VALUES ($1, $2, $3)
		ON CONFLICT (account, mount_spell_id) DO UPDATE SET flags = $3`},
	LoginRepAppearanceBlock: {"LoginRepAppearanceBlock", ScopeLogin, `
		INSERT INTO account_item_appearances (account, blob_index, appearance_mask) VALUES ($1, $2, $3)
		ON CONFLICT (account, blob_index) DO UPDATE SET appearance_mask = $3`},
	LoginDelAppearanceBlock: {"LoginDelAppearanceBlock", ScopeLogin,
		`DELETE FROM account_item_appearances WHERE account = $1 AND blob_index = $2`},
	LoginInsFavoriteAppearance: {"LoginInsFavoriteAppearance", ScopeLogin,
		`INSERT INTO account_item_favorite_appearances (account, item_modified_appearance_id) VALUES ($1, $2)`},
	LoginDelFavoriteAppearance: {"LoginDelFavoriteAppearance", ScopeLogin,
		`DELETE FROM account_item_favorite_appearances WHERE account = $1 AND item_modified_appearance_id = $2`},
	LoginRepIllusionBlock: {"LoginRepIllusionBlock", ScopeLogin, `
		INSERT INTO account_transmog_illusions (account, blob_index, illusion_mask) VALUES ($1, $2, $3)
		ON CONFLICT (account, blob_index) DO UPDATE SET illusion_mask = $3`},
	LoginDelIllusionBlock: {"LoginDelIllusionBlock", ScopeLogin,
		`DELETE FROM account_transmog_illusions WHERE account = $1 AND blob_index = $2`},
}

func lookup(id StatementID) statementDef {
	def, ok := statements[id]
	if !ok {
		panic(fmt.Sprintf("store: unknown statement %d", id))
	}
	return def
}

// String returns the statement's registered name.
func (id StatementID) String() string {
	if def, ok := statements[id]; ok {
		return def.name
	}
	return fmt.Sprintf("statement(%d)", uint16(id))
}

// Scope returns the database the statement targets.
func (id StatementID) Scope() Scope {
	return lookup(id).scope
}

// SQL returns the statement text.
func (id StatementID) SQL() string {
	return lookup(id).sql
}
