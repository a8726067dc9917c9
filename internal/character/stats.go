// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

// Stat weights.
const (
	healthPerStamina  = 10
	powerPerIntellect = 15
)

// UpdateAllStats recomputes the derived stats from class base values,
// level, equipped items and active auras. Health and power are left alone;
// see clampVitals.
func (p *Player) UpdateAllStats() {
	c := p.cfg.Content
	var st Stats
	var flatHealth, flatPower int64

	p.inventory.EachEquipped(func(it *Item) bool {
		if tmpl, ok := c.Item(it.Entry); ok {
			st.Stamina += tmpl.Stamina
			st.Intellect += tmpl.Intellect
		}
		return true
	})
	p.auras.Each(func(a *Aura) bool {
		if info, ok := c.Spell(a.Spell); ok {
			stacks := int32(max(a.Stacks, 1))
			st.Stamina += info.Stamina * stacks
			flatHealth += int64(info.MaxHealth) * int64(stacks)
			flatPower += int64(info.MaxPower) * int64(stacks)
		}
		return true
	})

	var baseHealth, basePower int64
	if class, ok := c.Class(p.base.Class); ok {
		lvl := int64(max(p.base.Level, 1)) - 1
		baseHealth = int64(class.BaseHealth) + int64(class.HealthPerLevel)*lvl
		basePower = int64(class.BasePower) + int64(class.PowerPerLevel)*lvl
	}

	health := baseHealth + healthPerStamina*int64(st.Stamina) + flatHealth
	power := basePower + powerPerIntellect*int64(st.Intellect) + flatPower
	st.MaxHealth = uint32(max(health, 1))
	st.MaxPower = uint32(max(power, 0))
	p.stats = st
}

// clampVitals lowers health and power to their maximums.
func (p *Player) clampVitals() {
	if p.base.Health > p.stats.MaxHealth {
		p.base.Health = p.stats.MaxHealth
		p.baseDirty = true
	}
	if p.base.Power > p.stats.MaxPower {
		p.base.Power = p.stats.MaxPower
		p.baseDirty = true
	}
}
