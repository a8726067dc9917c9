// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import "github.com/CypherCore/CypherCore-sub002/internal/store"

// MaxCUFProfiles is the number of raid frame profiles.
const MaxCUFProfiles = 5

// CUFProfile is a raid frame layout.
type CUFProfile struct {
	Name        string
	FrameHeight uint16
	FrameWidth  uint16
	SortBy      uint8
	HealthText  uint8
	// Options is a bitmask of boolean frame options.
	Options uint64
}

// CUFProfiles holds the raid frame profiles. They are saved wholesale.
type CUFProfiles struct {
	profiles [MaxCUFProfiles]*CUFProfile
	dirty    bool
}

func newCUFProfiles() *CUFProfiles { return &CUFProfiles{} }

func (c *CUFProfiles) load(rows []store.CUFProfileRow, r *repairs) {
	for _, row := range rows {
		if row.ID < 0 || row.ID >= MaxCUFProfiles {
			c.dirty = true
			r.fixed("cuf_profile", "id", row.ID)
			continue
		}
		c.profiles[row.ID] = &CUFProfile{
			Name:        row.Name,
			FrameHeight: uint16(row.FrameHeight),
			FrameWidth:  uint16(row.FrameWidth),
			SortBy:      uint8(row.SortBy),
			HealthText:  uint8(row.HealthText),
			Options:     uint64(row.BoolOptions),
		}
	}
}

// Get returns profile id.
func (c *CUFProfiles) Get(id uint8) (*CUFProfile, bool) {
	if id >= MaxCUFProfiles || c.profiles[id] == nil {
		return nil, false
	}
	return c.profiles[id], true
}

// Set stores profile id; a nil profile clears it.
func (c *CUFProfiles) Set(id uint8, p *CUFProfile) bool {
	if id >= MaxCUFProfiles {
		return false
	}
	c.profiles[id] = p
	c.dirty = true
	return true
}

// Dirty reports whether the profiles must be rewritten.
func (c *CUFProfiles) Dirty() bool { return c.dirty }

func (c *CUFProfiles) emit(tx *store.Transaction, guid int64) {
	if !c.dirty {
		return
	}
	tx.Append(store.CharDelCUFProfiles, guid)
	for id, p := range c.profiles {
		if p == nil {
			continue
		}
		tx.Append(store.CharInsCUFProfile, guid, int16(id), p.Name, int16(p.FrameHeight),
			int16(p.FrameWidth), int16(p.SortBy), int16(p.HealthText), int64(p.Options))
	}
}

func (c *CUFProfiles) committed() { c.dirty = false }
