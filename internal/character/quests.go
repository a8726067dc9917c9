// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"slices"
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// QuestStatus is the progress state of a quest in the log.
type QuestStatus uint8

// Quest states, matching the stored values.
const (
	QuestNone       QuestStatus = 0
	QuestComplete   QuestStatus = 1
	QuestIncomplete QuestStatus = 3
	QuestFailed     QuestStatus = 5
)

func (s QuestStatus) valid() bool {
	switch s {
	case QuestComplete, QuestIncomplete, QuestFailed:
		return true
	}
	return false
}

// QuestProgress is a quest in the quest log.
type QuestProgress struct {
	entity.Tracked
	Status     QuestStatus
	Explored   bool
	Accepted   time.Time
	Ends       time.Time
	Objectives []int32
}

// rewarded marks a quest turned in for good.
type rewarded struct {
	entity.Tracked
}

type questContent interface {
	Quest(id uint32) (content.QuestTemplate, bool)
}

// Quests holds the quest log, rewarded quests and the daily and weekly
// completion lists. The daily and weekly lists are rewritten wholesale.
type Quests struct {
	content  questContent
	log      *entity.Collection[uint32, *QuestProgress]
	rewarded *entity.Collection[uint32, *rewarded]

	daily       map[uint32]time.Time
	dailyDirty  bool
	weekly      map[uint32]struct{}
	weeklyDirty bool
}

func newQuests(c questContent) *Quests {
	return &Quests{
		content:  c,
		log:      entity.NewCollection[uint32, *QuestProgress](),
		rewarded: entity.NewCollection[uint32, *rewarded](),
		daily:    make(map[uint32]time.Time),
		weekly:   make(map[uint32]struct{}),
	}
}

func unixOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func zeroOrUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// load restores quest state. Rewarded quests load first so that a status
// row for a quest already turned in can be recognised and deleted.
func (q *Quests) load(guid int64, b *store.LoadBatch, r *repairs) {
	for _, row := range b.QuestRewarded {
		id := uint32(row.Quest)
		if _, ok := q.content.Quest(id); !ok {
			r.skip("quest", "quest", row.Quest)
			continue
		}
		q.rewarded.Load(id, &rewarded{})
	}
	for _, row := range b.QuestStatus {
		id := uint32(row.Quest)
		if _, ok := q.content.Quest(id); !ok {
			r.skip("quest", "quest", row.Quest)
			continue
		}
		if q.rewarded.Has(id) {
			r.delete("quest", store.CharDelQuestStatus, guid, row.Quest)
			continue
		}
		st := QuestStatus(row.Status)
		qp := &QuestProgress{
			Status:     st,
			Explored:   row.Explored,
			Accepted:   unixOrZero(row.AcceptTime),
			Ends:       unixOrZero(row.EndTime),
			Objectives: slices.Clone(row.Objectives),
		}
		q.log.Load(id, qp)
		if !st.valid() {
			qp.Status = QuestIncomplete
			qp.MarkChanged()
			r.fixed("quest", "quest", row.Quest)
		}
	}
	for _, row := range b.DailyQuests {
		if _, ok := q.content.Quest(uint32(row.Quest)); !ok {
			q.dailyDirty = true
			r.skip("quest", "quest", row.Quest)
			continue
		}
		q.daily[uint32(row.Quest)] = unixOrZero(row.Time)
	}
	for _, id := range b.WeeklyQuests {
		if _, ok := q.content.Quest(uint32(id)); !ok {
			q.weeklyDirty = true
			r.skip("quest", "quest", id)
			continue
		}
		q.weekly[uint32(id)] = struct{}{}
	}
}

// Accept adds a quest to the log. Rewarded quests and quests already in
// the log are refused.
func (q *Quests) Accept(id uint32, objectives int, now time.Time) bool {
	if _, ok := q.content.Quest(id); !ok || q.rewarded.Has(id) || q.log.Has(id) {
		return false
	}
	q.log.Put(id, &QuestProgress{
		Status:     QuestIncomplete,
		Accepted:   now,
		Objectives: make([]int32, objectives),
	})
	return true
}

// Status returns the log state of a quest.
func (q *Quests) Status(id uint32) QuestStatus {
	if qp, ok := q.log.Get(id); ok {
		return qp.Status
	}
	return QuestNone
}

// Progress returns the log entry of a quest.
func (q *Quests) Progress(id uint32) (*QuestProgress, bool) { return q.log.Get(id) }

// SetObjective records progress on one objective.
func (q *Quests) SetObjective(id uint32, index int, value int32) bool {
	qp, ok := q.log.Get(id)
	if !ok || index < 0 || index >= len(qp.Objectives) {
		return false
	}
	if qp.Objectives[index] != value {
		qp.Objectives[index] = value
		qp.MarkChanged()
	}
	return true
}

// Complete marks a logged quest complete.
func (q *Quests) Complete(id uint32) bool {
	qp, ok := q.log.Get(id)
	if !ok {
		return false
	}
	if qp.Status != QuestComplete {
		qp.Status = QuestComplete
		qp.MarkChanged()
	}
	return true
}

// Fail marks a logged quest failed.
func (q *Quests) Fail(id uint32) bool {
	qp, ok := q.log.Get(id)
	if !ok {
		return false
	}
	if qp.Status != QuestFailed {
		qp.Status = QuestFailed
		qp.MarkChanged()
	}
	return true
}

// Abandon drops a quest from the log.
func (q *Quests) Abandon(id uint32) bool { return q.log.Remove(id, entity.Deleted) }

// Reward turns in a completed quest. The log entry is deleted and the
// quest is recorded as rewarded. It returns the spell the quest teaches,
// if any.
func (q *Quests) Reward(id uint32) (spell uint32, ok bool) {
	tmpl, known := q.content.Quest(id)
	if !known || q.Status(id) != QuestComplete {
		return 0, false
	}
	q.log.Remove(id, entity.Deleted)
	if !q.rewarded.Revive(id) {
		q.rewarded.Put(id, &rewarded{})
	}
	return tmpl.RewardSpell, true
}

// IsRewarded reports whether a quest has been turned in.
func (q *Quests) IsRewarded(id uint32) bool { return q.rewarded.Has(id) }

// Forget clears a rewarded quest so it can be taken again.
func (q *Quests) Forget(id uint32) bool { return q.rewarded.Remove(id, entity.Deleted) }

// MarkDaily records a daily quest completion.
func (q *Quests) MarkDaily(id uint32, now time.Time) {
	q.daily[id] = now
	q.dailyDirty = true
}

// MarkWeekly records a weekly quest completion.
func (q *Quests) MarkWeekly(id uint32) {
	q.weekly[id] = struct{}{}
	q.weeklyDirty = true
}

// DoneToday reports whether a daily quest was completed since the last
// daily reset.
func (q *Quests) DoneToday(id uint32) bool {
	_, ok := q.daily[id]
	return ok
}

// DoneThisWeek reports whether a weekly quest was completed since the last
// weekly reset.
func (q *Quests) DoneThisWeek(id uint32) bool {
	_, ok := q.weekly[id]
	return ok
}

// ResetDaily clears the daily completion list.
func (q *Quests) ResetDaily() {
	if len(q.daily) > 0 {
		clear(q.daily)
		q.dailyDirty = true
	}
}

// ResetWeekly clears the weekly completion list.
func (q *Quests) ResetWeekly() {
	if len(q.weekly) > 0 {
		clear(q.weekly)
		q.weeklyDirty = true
	}
}

// Dirty returns the number of entries needing a statement. Each wholesale
// list counts once.
func (q *Quests) Dirty() int {
	n := q.log.Dirty() + q.rewarded.Dirty()
	if q.dailyDirty {
		n++
	}
	if q.weeklyDirty {
		n++
	}
	return n
}

func (q *Quests) emit(tx *store.Transaction, guid int64) {
	q.log.Flush(func(id uint32, qp *QuestProgress) {
		args := []any{guid, int32(id), int16(qp.Status), qp.Explored,
			zeroOrUnix(qp.Accepted), zeroOrUnix(qp.Ends), int32s(qp.Objectives)}
		switch qp.State() {
		case entity.New:
			tx.Append(store.CharInsQuestStatus, args...)
		case entity.Changed:
			tx.Append(store.CharUpdQuestStatus, args...)
		default:
			tx.Append(store.CharDelQuestStatus, guid, int32(id))
		}
	})
	q.rewarded.Flush(func(id uint32, rw *rewarded) {
		if rw.State() == entity.New {
			tx.Append(store.CharInsQuestRewarded, guid, int32(id))
			return
		}
		tx.Append(store.CharDelQuestRewarded, guid, int32(id))
	})
	if q.dailyDirty {
		tx.Append(store.CharDelDailyQuests, guid)
		for _, id := range sortedKeys(q.daily) {
			tx.Append(store.CharInsDailyQuest, guid, int32(id), zeroOrUnix(q.daily[id]))
		}
	}
	if q.weeklyDirty {
		tx.Append(store.CharDelWeeklyQuests, guid)
		for _, id := range sortedKeys(q.weekly) {
			tx.Append(store.CharInsWeeklyQuest, guid, int32(id))
		}
	}
}

func (q *Quests) committed() {
	q.log.Commit()
	q.rewarded.Commit()
	q.dailyDirty = false
	q.weeklyDirty = false
}
