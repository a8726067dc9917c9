// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// querier abstracts query execution for both a pool and an open transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Loader fetches every result set a character or account needs in one pass.
// The character pipeline never queries the database itself; it consumes the
// resulting batch synchronously.
type Loader struct {
	chars  querier
	login  querier
	tracer trace.Tracer
}

// NewLoader creates a loader reading character data from chars and
// account-global data from login.
func NewLoader(chars, login Pool) *Loader {
	return &Loader{
		chars:  chars,
		login:  login,
		tracer: otel.Tracer("github.com/CypherCore/CypherCore-sub002/internal/store"),
	}
}

// Load queries.
const (
	qCharacter = `
		SELECT guid, account, name, race, class, gender, level, xp, money, skin, face,
			hair_style, hair_color, map, instance_id, dungeon_difficulty, raid_difficulty,
			legacy_raid_difficulty, position_x, position_y, position_z, orientation,
			transport_guid, taxi_path, health, power, at_login, extra_flags,
			active_talent_group, total_time, level_time, logout_time
		FROM characters WHERE guid = $1`
	qBanned = `
		SELECT EXISTS (SELECT 1 FROM character_banned
			WHERE guid = $1 AND active AND (unban_date = ban_date OR unban_date > $2))`
	qHomebind = `
		SELECT map, zone, position_x, position_y, position_z, orientation
		FROM character_homebind WHERE guid = $1`
	qBattleground = `
		SELECT instance_id, team, map, position_x, position_y, position_z, orientation
		FROM character_battleground_data WHERE guid = $1`
	qGroup = `
		SELECT g.guid, g.leader_guid, g.group_type, g.dungeon_difficulty, g.raid_difficulty,
			g.legacy_raid_difficulty
		FROM group_member m JOIN groups g ON g.guid = m.group_guid
		WHERE m.member_guid = $1`
	qDeclinedName = `
		SELECT genitive, dative, accusative, instrumental, prepositional
		FROM character_declinedname WHERE guid = $1`
	qCurrencies = `
		SELECT currency, quantity, weekly_quantity, tracked_quantity, flags
		FROM character_currency WHERE guid = $1`
	qSkills = `SELECT skill, value, max FROM character_skills WHERE guid = $1`
	qSpells = `SELECT spell, active, disabled FROM character_spell WHERE guid = $1`
	qAuras  = `
		SELECT caster_guid, item_guid, spell, effect_mask, recalculate_mask, stack_count,
			max_duration, expires_at, remain_charges, amounts
		FROM character_aura WHERE guid = $1`
	qTalents = `SELECT talent_id, talent_group FROM character_talent WHERE guid = $1`
	qGlyphs  = `SELECT talent_group, glyph_id FROM character_glyphs WHERE guid = $1`
	qQuests  = `
		SELECT quest, status, explored, accept_time, end_time, objectives
		FROM character_queststatus WHERE guid = $1`
	qQuestsRewarded = `SELECT quest, active FROM character_queststatus_rewarded WHERE guid = $1`
	qDailyQuests    = `SELECT quest, time FROM character_queststatus_daily WHERE guid = $1`
	qWeeklyQuests   = `SELECT quest FROM character_queststatus_weekly WHERE guid = $1`
	qItems          = `
		SELECT ii.guid, ii.item_entry, ii.creator_guid, ii.count, ii.expires_at, ii.charges,
			ii.flags, ii.durability, ii.play_time, ii.transmog_appearance, ii.refund_deadline,
			ci.bag, ci.slot
		FROM character_inventory ci JOIN item_instance ii ON ii.guid = ci.item
		WHERE ci.guid = $1
		ORDER BY ci.bag, ci.slot`
	qEquipmentSets = `
		SELECT setguid, setindex, name, iconname, ignore_mask, items
		FROM character_equipmentsets WHERE guid = $1 ORDER BY setindex`
	qActions     = `SELECT spec, button, action, type FROM character_action WHERE guid = $1`
	qVoidStorage = `
		SELECT item_id, item_entry, slot, creator_guid, random_bonus
		FROM character_void_storage WHERE player_guid = $1`
	qCUFProfiles = `
		SELECT id, name, frame_height, frame_width, sort_by, health_text, bool_options
		FROM character_cuf_profiles WHERE guid = $1`
	qMails = `
		SELECT id, sender, subject, money, deliver_time, expire_time, checked
		FROM mail WHERE receiver = $1 ORDER BY id`
	qBinds = `
		SELECT ci.map, ci.difficulty, ci.instance, ci.permanent, ci.extend_state,
			i.resettime, i.completed_encounters, i.data
		FROM character_instance ci JOIN instance i ON i.id = ci.instance
		WHERE ci.guid = $1`
	qInstanceTimes = `SELECT instance_id, release_time FROM account_instance_times WHERE account = $1`
	qAchievements  = `SELECT achievement, date FROM character_achievement WHERE guid = $1`

	qGroupBinds = `
		SELECT gi.map, gi.difficulty, gi.instance, gi.permanent, i.resettime,
			i.completed_encounters, i.data
		FROM group_instance gi JOIN instance i ON i.id = gi.instance
		WHERE gi.group_guid = $1`
	qInstances = `SELECT id, map, difficulty, resettime, completed_encounters, data FROM instance`

	qToys                = `SELECT item_id, is_favourite, has_fanfare FROM account_toys WHERE account = $1`
	qHeirlooms           = `SELECT item_id, flags FROM account_heirlooms WHERE account = $1`
	qMounts              = `SELECT mount_spell_id, flags FROM account_mounts WHERE account = $1`
	qAppearances         = `SELECT blob_index, appearance_mask FROM account_item_appearances WHERE account = $1 ORDER BY blob_index`
	qFavoriteAppearances = `SELECT item_modified_appearance_id FROM account_item_favorite_appearances WHERE account = $1`
	qIllusions           = `SELECT blob_index, illusion_mask FROM account_transmog_illusions WHERE account = $1 ORDER BY blob_index`
)

// LoadCharacter reads every per-character result set for guid. A character
// that does not exist yields a batch with a nil Character row, not an error;
// deciding what that means is the pipeline's job.
func (l *Loader) LoadCharacter(ctx context.Context, guid, account int64, now time.Time) (*LoadBatch, error) {
	ctx, span := l.tracer.Start(ctx, "store.LoadCharacter",
		trace.WithAttributes(attribute.Int64("character.guid", guid)))
	defer span.End()

	b := &LoadBatch{}
	var err error

	if b.Character, err = queryOne(ctx, l.chars, "character", qCharacter, scanCharacter, guid); err != nil {
		return nil, err
	}
	if b.Character == nil {
		return b, nil
	}
	if err := l.chars.QueryRow(ctx, qBanned, guid, now.Unix()).Scan(&b.Banned); err != nil {
		return nil, oops.Code("LOAD_QUERY_FAILED").With("query", "banned").With("guid", guid).Wrap(err)
	}
	if b.Homebind, err = queryOne(ctx, l.chars, "homebind", qHomebind, scanHomebind, guid); err != nil {
		return nil, err
	}
	if b.Battleground, err = queryOne(ctx, l.chars, "battleground", qBattleground, scanBattleground, guid); err != nil {
		return nil, err
	}
	if b.Group, err = queryOne(ctx, l.chars, "group", qGroup, scanGroup, guid); err != nil {
		return nil, err
	}
	if b.Group != nil {
		if b.GroupBinds, err = l.LoadGroupBinds(ctx, b.Group.Guid); err != nil {
			return nil, err
		}
	}
	if b.DeclinedName, err = queryOne(ctx, l.chars, "declined_name", qDeclinedName, scanDeclinedName, guid); err != nil {
		return nil, err
	}

	lists := []func() error{
		func() (err error) { b.Currencies, err = queryAll(ctx, l.chars, "currency", qCurrencies, scanCurrency, guid); return },
		func() (err error) { b.Skills, err = queryAll(ctx, l.chars, "skills", qSkills, scanSkill, guid); return },
		func() (err error) { b.Spells, err = queryAll(ctx, l.chars, "spells", qSpells, scanSpell, guid); return },
		func() (err error) { b.Auras, err = queryAll(ctx, l.chars, "auras", qAuras, scanAura, guid); return },
		func() (err error) { b.Talents, err = queryAll(ctx, l.chars, "talents", qTalents, scanTalent, guid); return },
		func() (err error) { b.Glyphs, err = queryAll(ctx, l.chars, "glyphs", qGlyphs, scanGlyph, guid); return },
		func() (err error) { b.QuestStatus, err = queryAll(ctx, l.chars, "quest_status", qQuests, scanQuestStatus, guid); return },
		func() (err error) {
			b.QuestRewarded, err = queryAll(ctx, l.chars, "quest_rewarded", qQuestsRewarded, scanQuestRewarded, guid)
			return
		},
		func() (err error) { b.DailyQuests, err = queryAll(ctx, l.chars, "quest_daily", qDailyQuests, scanDailyQuest, guid); return },
		func() (err error) { b.WeeklyQuests, err = queryAll(ctx, l.chars, "quest_weekly", qWeeklyQuests, scanInt32, guid); return },
		func() (err error) { b.Items, err = queryAll(ctx, l.chars, "items", qItems, scanItem, guid); return },
		func() (err error) {
			b.EquipmentSets, err = queryAll(ctx, l.chars, "equipment_sets", qEquipmentSets, scanEquipmentSet, guid)
			return
		},
		func() (err error) { b.Actions, err = queryAll(ctx, l.chars, "actions", qActions, scanAction, guid); return },
		func() (err error) { b.VoidStorage, err = queryAll(ctx, l.chars, "void_storage", qVoidStorage, scanVoidItem, guid); return },
		func() (err error) { b.CUFProfiles, err = queryAll(ctx, l.chars, "cuf_profiles", qCUFProfiles, scanCUFProfile, guid); return },
		func() (err error) { b.Mails, err = queryAll(ctx, l.chars, "mails", qMails, scanMail, guid); return },
		func() (err error) { b.Binds, err = queryAll(ctx, l.chars, "binds", qBinds, scanBind, guid); return },
		func() (err error) {
			b.InstanceTimes, err = queryAll(ctx, l.chars, "instance_times", qInstanceTimes, scanInstanceTime, account)
			return
		},
		func() (err error) {
			b.Achievements, err = queryAll(ctx, l.chars, "achievements", qAchievements, scanAchievement, guid)
			return
		},
	}
	for _, fn := range lists {
		if err := fn(); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}
	return b, nil
}

// LoadAccount reads the account-global collections.
func (l *Loader) LoadAccount(ctx context.Context, account int64) (*AccountBatch, error) {
	ctx, span := l.tracer.Start(ctx, "store.LoadAccount",
		trace.WithAttributes(attribute.Int64("account.id", account)))
	defer span.End()

	b := &AccountBatch{}
	var err error
	if b.Toys, err = queryAll(ctx, l.login, "toys", qToys, scanToy, account); err != nil {
		return nil, err
	}
	if b.Heirlooms, err = queryAll(ctx, l.login, "heirlooms", qHeirlooms, scanHeirloom, account); err != nil {
		return nil, err
	}
	if b.Mounts, err = queryAll(ctx, l.login, "mounts", qMounts, scanMount, account); err != nil {
		return nil, err
	}
	if b.Appearances, err = queryAll(ctx, l.login, "appearances", qAppearances, scanBlock, account); err != nil {
		return nil, err
	}
	if b.FavoriteAppearances, err = queryAll(ctx, l.login, "favorite_appearances", qFavoriteAppearances, scanInt32, account); err != nil {
		return nil, err
	}
	if b.Illusions, err = queryAll(ctx, l.login, "illusions", qIllusions, scanBlock, account); err != nil {
		return nil, err
	}
	return b, nil
}

// LoadGroupBinds reads the instance binds owned by a group.
func (l *Loader) LoadGroupBinds(ctx context.Context, group int64) ([]GroupBindRow, error) {
	return queryAll(ctx, l.chars, "group_binds", qGroupBinds, scanGroupBind, group)
}

// LoadInstances reads every instance record.
func (l *Loader) LoadInstances(ctx context.Context) ([]InstanceRow, error) {
	return queryAll(ctx, l.chars, "instances", qInstances, scanInstance)
}

func queryOne[T any](ctx context.Context, q querier, name, sql string, scan func(pgx.Row, *T) error, args ...any) (*T, error) {
	var v T
	err := scan(q.QueryRow(ctx, sql, args...), &v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("LOAD_QUERY_FAILED").With("query", name).Wrap(err)
	}
	return &v, nil
}

func queryAll[T any](ctx context.Context, q querier, name, sql string, scan func(pgx.Row, *T) error, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.Code("LOAD_QUERY_FAILED").With("query", name).Wrap(err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, oops.Code("LOAD_SCAN_FAILED").With("query", name).Wrap(err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("LOAD_ITERATE_FAILED").With("query", name).Wrap(err)
	}
	return out, nil
}

func scanCharacter(row pgx.Row, c *CharacterRow) error {
	return row.Scan(&c.Guid, &c.Account, &c.Name, &c.Race, &c.Class, &c.Gender, &c.Level,
		&c.XP, &c.Money, &c.Skin, &c.Face, &c.HairStyle, &c.HairColor, &c.Map, &c.InstanceID,
		&c.DungeonDifficulty, &c.RaidDifficulty, &c.LegacyRaidDifficulty, &c.X, &c.Y, &c.Z, &c.O,
		&c.TransportGuid, &c.TaxiPath, &c.Health, &c.Power, &c.AtLogin, &c.ExtraFlags,
		&c.ActiveTalentGroup, &c.TotalTime, &c.LevelTime, &c.LogoutTime)
}

func scanHomebind(row pgx.Row, h *HomebindRow) error {
	return row.Scan(&h.Map, &h.Zone, &h.X, &h.Y, &h.Z, &h.O)
}

func scanBattleground(row pgx.Row, b *BattlegroundRow) error {
	return row.Scan(&b.InstanceID, &b.Team, &b.Map, &b.X, &b.Y, &b.Z, &b.O)
}

func scanGroup(row pgx.Row, g *GroupRow) error {
	return row.Scan(&g.Guid, &g.LeaderGuid, &g.GroupType, &g.DungeonDifficulty, &g.RaidDifficulty,
		&g.LegacyRaidDifficulty)
}

func scanDeclinedName(row pgx.Row, d *DeclinedNameRow) error {
	return row.Scan(&d.Names[0], &d.Names[1], &d.Names[2], &d.Names[3], &d.Names[4])
}

func scanCurrency(row pgx.Row, c *CurrencyRow) error {
	return row.Scan(&c.Currency, &c.Quantity, &c.WeeklyQuantity, &c.TrackedQuantity, &c.Flags)
}

func scanSkill(row pgx.Row, s *SkillRow) error {
	return row.Scan(&s.Skill, &s.Value, &s.Max)
}

func scanSpell(row pgx.Row, s *SpellRow) error {
	return row.Scan(&s.Spell, &s.Active, &s.Disabled)
}

func scanAura(row pgx.Row, a *AuraRow) error {
	return row.Scan(&a.CasterGuid, &a.ItemGuid, &a.Spell, &a.EffectMask, &a.RecalculateMask,
		&a.StackCount, &a.MaxDuration, &a.ExpiresAt, &a.RemainCharges, &a.Amounts)
}

func scanTalent(row pgx.Row, t *TalentRow) error {
	return row.Scan(&t.TalentID, &t.TalentGroup)
}

func scanGlyph(row pgx.Row, g *GlyphRow) error {
	return row.Scan(&g.TalentGroup, &g.GlyphID)
}

func scanQuestStatus(row pgx.Row, q *QuestStatusRow) error {
	return row.Scan(&q.Quest, &q.Status, &q.Explored, &q.AcceptTime, &q.EndTime, &q.Objectives)
}

func scanQuestRewarded(row pgx.Row, q *QuestRewardedRow) error {
	return row.Scan(&q.Quest, &q.Active)
}

func scanDailyQuest(row pgx.Row, q *DailyQuestRow) error {
	return row.Scan(&q.Quest, &q.Time)
}

func scanInt32(row pgx.Row, v *int32) error {
	return row.Scan(v)
}

func scanItem(row pgx.Row, i *ItemRow) error {
	return row.Scan(&i.Guid, &i.Entry, &i.Creator, &i.Count, &i.ExpiresAt, &i.Charges, &i.Flags,
		&i.Durability, &i.PlayTime, &i.TransmogAppearance, &i.RefundDeadline, &i.Bag, &i.Slot)
}

func scanEquipmentSet(row pgx.Row, e *EquipmentSetRow) error {
	return row.Scan(&e.SetGuid, &e.SetIndex, &e.Name, &e.IconName, &e.IgnoreMask, &e.Items)
}

func scanAction(row pgx.Row, a *ActionRow) error {
	return row.Scan(&a.Spec, &a.Button, &a.Action, &a.Type)
}

func scanVoidItem(row pgx.Row, v *VoidItemRow) error {
	return row.Scan(&v.ItemID, &v.Entry, &v.Slot, &v.Creator, &v.RandomBonus)
}

func scanCUFProfile(row pgx.Row, c *CUFProfileRow) error {
	return row.Scan(&c.ID, &c.Name, &c.FrameHeight, &c.FrameWidth, &c.SortBy, &c.HealthText, &c.BoolOptions)
}

func scanMail(row pgx.Row, m *MailRow) error {
	return row.Scan(&m.ID, &m.Sender, &m.Subject, &m.Money, &m.DeliverTime, &m.ExpireTime, &m.Checked)
}

func scanBind(row pgx.Row, b *BindRow) error {
	return row.Scan(&b.Map, &b.Difficulty, &b.Instance, &b.Permanent, &b.ExtendState,
		&b.ResetTime, &b.CompletedEncounters, &b.Data)
}

func scanGroupBind(row pgx.Row, b *GroupBindRow) error {
	return row.Scan(&b.Map, &b.Difficulty, &b.Instance, &b.Permanent, &b.ResetTime,
		&b.CompletedEncounters, &b.Data)
}

func scanInstance(row pgx.Row, i *InstanceRow) error {
	return row.Scan(&i.ID, &i.Map, &i.Difficulty, &i.ResetTime, &i.CompletedEncounters, &i.Data)
}

func scanInstanceTime(row pgx.Row, t *InstanceTimeRow) error {
	return row.Scan(&t.InstanceID, &t.ReleaseTime)
}

func scanAchievement(row pgx.Row, a *AchievementRow) error {
	return row.Scan(&a.Achievement, &a.Date)
}

func scanToy(row pgx.Row, t *ToyRow) error {
	return row.Scan(&t.ItemID, &t.Favourite, &t.Fanfare)
}

func scanHeirloom(row pgx.Row, h *HeirloomRow) error {
	return row.Scan(&h.ItemID, &h.Flags)
}

func scanMount(row pgx.Row, m *MountRow) error {
	return row.Scan(&m.SpellID, &m.Flags)
}

func scanBlock(row pgx.Row, b *BlockRow) error {
	return row.Scan(&b.Index, &b.Mask)
}
