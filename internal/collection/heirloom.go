// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package collection

// AddHeirloom collects an heirloom item.
func (m *Manager) AddHeirloom(item uint32, flags uint32) bool {
	if _, ok := m.content.Heirloom(item); !ok || m.heirlooms.Has(item) {
		return false
	}
	m.heirlooms.Put(item, &Heirloom{Flags: flags})
	return true
}

// Heirloom returns the collected heirloom for item.
func (m *Manager) Heirloom(item uint32) (*Heirloom, bool) { return m.heirlooms.Get(item) }

// UpgradeHeirloom applies the upgrade kit castItem to a collected
// heirloom. It reports whether the kit matched one of the heirloom's
// upgrade levels.
func (m *Manager) UpgradeHeirloom(item, castItem uint32) bool {
	info, ok := m.content.Heirloom(item)
	if !ok {
		return false
	}
	h, ok := m.heirlooms.Get(item)
	if !ok {
		return false
	}
	var mask uint32
	for level, upgrade := range info.UpgradeItems {
		if upgrade == castItem && level < 32 {
			mask |= 1 << uint(level)
		}
	}
	if mask == 0 {
		return false
	}
	if h.Flags|mask != h.Flags {
		h.Flags |= mask
		h.MarkChanged()
	}
	return true
}

// CheckHeirloomUpgrades walks the static upgrade chain of a collected
// heirloom and returns the furthest upgraded item the character owns, as
// reported by owns. When one is found the heirloom's upgrade flags are
// reset because the upgraded item replaces it. A malformed chain that loops
// back on itself stops at the first repeated item.
func (m *Manager) CheckHeirloomUpgrades(item uint32, owns func(item uint32) bool) (uint32, bool) {
	info, ok := m.content.Heirloom(item)
	if !ok {
		return 0, false
	}
	h, ok := m.heirlooms.Get(item)
	if !ok {
		return 0, false
	}

	var found uint32
	visited := map[uint32]struct{}{item: {}}
	for next := info.StaticUpgradedItem; next != 0; {
		if _, seen := visited[next]; seen {
			m.logger.Warn("heirloom upgrade chain loops", "item", item, "repeated", next)
			break
		}
		visited[next] = struct{}{}
		step, ok := m.content.Heirloom(next)
		if !ok {
			break
		}
		if owns(step.Item) {
			found = step.Item
		}
		next = step.StaticUpgradedItem
	}
	if found == 0 {
		return 0, false
	}
	if h.Flags != 0 {
		h.Flags = 0
		h.MarkChanged()
	}
	return found, true
}
