// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package access evaluates dungeon entry requirements against a character.
//
// Evaluation is pure: every check is computed independently and recorded
// in a bitmask, so whether entry is denied does not depend on the order the
// checks run in. Only the reported first failure follows the fixed order
// level-min, level-max, condition, item, quest, achievement.
package access

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
)

// Check identifies one requirement check. Values are single bits.
type Check uint8

// Checks in reporting order.
const (
	CheckLevelMin Check = 1 << iota
	CheckLevelMax
	CheckCondition
	CheckItem
	CheckQuest
	CheckAchievement
)

var checkStrings = [...]string{
	"level_min",
	"level_max",
	"condition",
	"item",
	"quest",
	"achievement",
}

// String returns the check name, or a "|"-joined list for a mask.
func (c Check) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for m := c; m != 0; m &= m - 1 {
		i := bits.TrailingZeros8(uint8(m))
		if i < len(checkStrings) {
			names = append(names, checkStrings[i])
		} else {
			names = append(names, fmt.Sprintf("check(%d)", i))
		}
	}
	return strings.Join(names, "|")
}

// Effect is the overall outcome of an evaluation.
type Effect uint8

// Effects.
const (
	EffectAllow Effect = iota
	EffectDeny
	EffectGameMasterBypass
)

var effectStrings = [...]string{
	"allow",
	"deny",
	"gm_bypass",
}

func (e Effect) String() string {
	if int(e) < len(effectStrings) {
		return effectStrings[e]
	}
	return fmt.Sprintf("unknown(%d)", int(e))
}

// Subject is the character asking to enter.
type Subject interface {
	content.Facts
	GameMaster() bool
	Faction() content.Faction
}

// Achiever is anything whose achievements can be checked.
type Achiever interface {
	HasAchievement(id uint32) bool
}

// Target is the map being entered and the group context.
type Target struct {
	MapID      uint32
	Difficulty content.Difficulty
	// Grouped subjects are judged on their leader's achievements. A
	// grouped subject whose leader is offline has a nil Leader and fails
	// any achievement requirement.
	Grouped bool
	Leader  Achiever
}

// Result is the outcome of Evaluate. Failed holds every failing check;
// First is the one the client is told about, with Detail naming the
// missing level, item, quest or achievement.
type Result struct {
	Effect  Effect
	Failed  Check
	First   Check
	Detail  uint32
	Message string
}

// OK reports whether entry is allowed.
func (r Result) OK() bool { return r.Effect != EffectDeny }

// Has reports whether c failed.
func (r Result) Has(c Check) bool { return r.Failed&c != 0 }

type check struct {
	id Check
	// fn reports the detail value and whether the check failed.
	fn func(s Subject, req *content.AccessRequirement, t Target) (uint32, bool)
}

// checks is the reporting order.
var checks = []check{
	{CheckLevelMin, levelMin},
	{CheckLevelMax, levelMax},
	{CheckCondition, condition},
	{CheckItem, item},
	{CheckQuest, quest},
	{CheckAchievement, achievement},
}

// Evaluate checks s against req for entering t. A nil requirement always
// allows entry. Game masters bypass every check.
func Evaluate(s Subject, req *content.AccessRequirement, t Target) Result {
	return evaluate(checks, s, req, t)
}

func evaluate(order []check, s Subject, req *content.AccessRequirement, t Target) Result {
	if s.GameMaster() {
		return Result{Effect: EffectGameMasterBypass}
	}
	if req == nil {
		return Result{Effect: EffectAllow}
	}

	res := Result{Effect: EffectAllow}
	details := make(map[Check]uint32, len(order))
	for _, c := range order {
		if detail, failed := c.fn(s, req, t); failed {
			res.Failed |= c.id
			details[c.id] = detail
		}
	}
	if res.Failed == 0 {
		return res
	}

	res.Effect = EffectDeny
	res.First = res.Failed & -res.Failed
	res.Detail = details[res.First]
	res.Message = req.Message
	return res
}

func levelMin(s Subject, req *content.AccessRequirement, _ Target) (uint32, bool) {
	return uint32(req.LevelMin), req.LevelMin > 0 && s.Level() < req.LevelMin
}

func levelMax(s Subject, req *content.AccessRequirement, _ Target) (uint32, bool) {
	return uint32(req.LevelMax), req.LevelMax > 0 && s.Level() > req.LevelMax
}

func condition(s Subject, req *content.AccessRequirement, _ Target) (uint32, bool) {
	return 0, !req.Check().Eval(s)
}

// item passes when either alternative is carried.
func item(s Subject, req *content.AccessRequirement, _ Target) (uint32, bool) {
	switch {
	case req.Item == 0 && req.Item2 == 0:
		return 0, false
	case req.Item != 0 && s.HasItem(req.Item):
		return 0, false
	case req.Item2 != 0 && s.HasItem(req.Item2):
		return 0, false
	case req.Item != 0:
		return req.Item, true
	default:
		return req.Item2, true
	}
}

func quest(s Subject, req *content.AccessRequirement, _ Target) (uint32, bool) {
	id := req.QuestAlliance
	if s.Faction() == content.FactionHorde {
		id = req.QuestHorde
	}
	return id, id != 0 && !s.HasRewardedQuest(id)
}

func achievement(s Subject, req *content.AccessRequirement, t Target) (uint32, bool) {
	if req.Achievement == 0 {
		return 0, false
	}
	var holder Achiever = s
	if t.Grouped {
		holder = t.Leader
	}
	return req.Achievement, holder == nil || !holder.HasAchievement(req.Achievement)
}
