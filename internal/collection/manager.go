// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package collection holds the account-wide collections shared by every
// character on an account: toys, heirlooms, mounts, item appearances,
// favorite appearances and transmog illusions. It is saved in the login
// database scope.
package collection

import (
	"log/slog"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Mount flags.
const (
	MountFlagFavorite    uint16 = 0x2
	MountFlagNeedFanfare uint16 = 0x4
)

// Content is the content lookup a Manager needs.
type Content interface {
	Item(id uint32) (content.ItemTemplate, bool)
	Heirloom(item uint32) (content.HeirloomInfo, bool)
	Spell(id uint32) (content.SpellInfo, bool)
	IsIllusion(id uint32) bool
}

// Toy is a learned toy.
type Toy struct {
	entity.Tracked
	Favorite bool
	Fanfare  bool
}

// Heirloom is a collected heirloom; Flags holds one bit per applied
// upgrade.
type Heirloom struct {
	entity.Tracked
	Flags uint32
}

// Mount is a learned mount spell.
type Mount struct {
	entity.Tracked
	Flags uint16
}

type favorite struct {
	entity.Tracked
}

// Manager owns one account's collections.
type Manager struct {
	account int64
	content Content
	logger  *slog.Logger

	toys        *entity.Collection[uint32, *Toy]
	heirlooms   *entity.Collection[uint32, *Heirloom]
	mounts      *entity.Collection[uint32, *Mount]
	favorites   *entity.Collection[uint32, *favorite]
	appearances *entity.BitSet
	illusions   *entity.BitSet
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for skipped rows.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates an empty manager for account.
func NewManager(account int64, c Content, opts ...Option) *Manager {
	m := &Manager{
		account:     account,
		content:     c,
		logger:      slog.Default(),
		toys:        entity.NewCollection[uint32, *Toy](),
		heirlooms:   entity.NewCollection[uint32, *Heirloom](),
		mounts:      entity.NewCollection[uint32, *Mount](),
		favorites:   entity.NewCollection[uint32, *favorite](),
		appearances: entity.NewBitSet(),
		illusions:   entity.NewBitSet(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Account returns the owning account id.
func (m *Manager) Account() int64 { return m.account }

// ToyCount returns the number of toys owned.
func (m *Manager) ToyCount() int { return m.toys.Len() }

// HeirloomCount returns the number of heirlooms owned.
func (m *Manager) HeirloomCount() int { return m.heirlooms.Len() }

// MountCount returns the number of mounts owned.
func (m *Manager) MountCount() int { return m.mounts.Len() }

// Load restores the account's collections. Rows referring to unknown
// content are skipped and counted.
func (m *Manager) Load(b *store.AccountBatch) int {
	skipped := 0
	for _, r := range b.Toys {
		item, ok := m.content.Item(uint32(r.ItemID))
		if !ok || !item.Toy {
			skipped++
			m.logger.Warn("skipping unknown toy", "account", m.account, "item", r.ItemID)
			continue
		}
		m.toys.Load(uint32(r.ItemID), &Toy{Favorite: r.Favourite, Fanfare: r.Fanfare})
	}
	for _, r := range b.Heirlooms {
		if _, ok := m.content.Heirloom(uint32(r.ItemID)); !ok {
			skipped++
			m.logger.Warn("skipping unknown heirloom", "account", m.account, "item", r.ItemID)
			continue
		}
		m.heirlooms.Load(uint32(r.ItemID), &Heirloom{Flags: uint32(r.Flags)})
	}
	for _, r := range b.Mounts {
		spell, ok := m.content.Spell(uint32(r.SpellID))
		if !ok || !spell.Mount {
			skipped++
			m.logger.Warn("skipping unknown mount", "account", m.account, "spell", r.SpellID)
			continue
		}
		m.mounts.Load(uint32(r.SpellID), &Mount{Flags: uint16(r.Flags)})
	}
	for _, r := range b.Appearances {
		m.appearances.LoadBlock(int(r.Index), uint32(r.Mask))
	}
	for _, id := range b.FavoriteAppearances {
		m.favorites.Load(uint32(id), &favorite{})
	}
	for _, r := range b.Illusions {
		m.illusions.LoadBlock(int(r.Index), uint32(r.Mask))
	}
	return skipped
}

// AddToy learns a toy. It reports false when the item is not a toy or is
// already known.
func (m *Manager) AddToy(item uint32, fanfare bool) bool {
	tmpl, ok := m.content.Item(item)
	if !ok || !tmpl.Toy || m.toys.Has(item) {
		return false
	}
	m.toys.Put(item, &Toy{Fanfare: fanfare})
	return true
}

// HasToy reports whether the toy is known.
func (m *Manager) HasToy(item uint32) bool { return m.toys.Has(item) }

// SetToyFavorite flags a known toy as favorite.
func (m *Manager) SetToyFavorite(item uint32, favorite bool) bool {
	t, ok := m.toys.Get(item)
	if !ok {
		return false
	}
	if t.Favorite != favorite {
		t.Favorite = favorite
		t.MarkChanged()
	}
	return true
}

// ClearToyFanfare marks the toy's first-use celebration as shown.
func (m *Manager) ClearToyFanfare(item uint32) {
	if t, ok := m.toys.Get(item); ok && t.Fanfare {
		t.Fanfare = false
		t.MarkChanged()
	}
}

// AddMount learns a mount spell.
func (m *Manager) AddMount(spell uint32, fanfare bool) bool {
	info, ok := m.content.Spell(spell)
	if !ok || !info.Mount || m.mounts.Has(spell) {
		return false
	}
	var flags uint16
	if fanfare {
		flags |= MountFlagNeedFanfare
	}
	m.mounts.Put(spell, &Mount{Flags: flags})
	return true
}

// HasMount reports whether the mount is known.
func (m *Manager) HasMount(spell uint32) bool { return m.mounts.Has(spell) }

// SetMountFavorite toggles the favorite flag of a known mount.
func (m *Manager) SetMountFavorite(spell uint32, favorite bool) bool {
	mt, ok := m.mounts.Get(spell)
	if !ok {
		return false
	}
	flags := mt.Flags &^ MountFlagFavorite
	if favorite {
		flags |= MountFlagFavorite
	}
	if flags != mt.Flags {
		mt.Flags = flags
		mt.MarkChanged()
	}
	return true
}

// AddItemAppearance records the appearance of item. It reports whether the
// appearance was new to the account.
func (m *Manager) AddItemAppearance(item uint32) bool {
	tmpl, ok := m.content.Item(item)
	if !ok || tmpl.Appearance == 0 {
		return false
	}
	return m.appearances.Set(tmpl.Appearance)
}

// HasItemAppearance reports whether the appearance is collected.
func (m *Manager) HasItemAppearance(appearance uint32) bool { return m.appearances.Test(appearance) }

// SetAppearanceFavorite adds or removes a favorite appearance. Only
// collected appearances can be favorites.
func (m *Manager) SetAppearanceFavorite(appearance uint32, fav bool) bool {
	if fav {
		if !m.appearances.Test(appearance) || m.favorites.Has(appearance) {
			return false
		}
		if m.favorites.Revive(appearance) {
			return true
		}
		m.favorites.Put(appearance, &favorite{})
		return true
	}
	return m.favorites.Remove(appearance, entity.Removed)
}

// IsAppearanceFavorite reports whether the appearance is a favorite.
func (m *Manager) IsAppearanceFavorite(appearance uint32) bool { return m.favorites.Has(appearance) }

// AddTransmogIllusion records an illusion.
func (m *Manager) AddTransmogIllusion(id uint32) bool {
	if !m.content.IsIllusion(id) {
		return false
	}
	return m.illusions.Set(id)
}

// HasTransmogIllusion reports whether the illusion is collected.
func (m *Manager) HasTransmogIllusion(id uint32) bool { return m.illusions.Test(id) }

// Dirty returns the number of statements the next save would emit.
func (m *Manager) Dirty() int {
	return m.toys.Dirty() + m.heirlooms.Dirty() + m.mounts.Dirty() + m.favorites.Dirty() +
		m.appearances.DirtyCount() + m.illusions.DirtyCount()
}

// EmitStatements queues the login-scope statements for every dirty entry
// and returns how many were queued.
func (m *Manager) EmitStatements(tx *store.Transaction) int {
	start := tx.Len()
	acct := m.account

	m.toys.Flush(func(item uint32, t *Toy) {
		tx.Append(store.LoginRepToy, acct, int32(item), t.Favorite, t.Fanfare)
	})
	m.heirlooms.Flush(func(item uint32, h *Heirloom) {
		tx.Append(store.LoginRepHeirloom, acct, int32(item), int32(h.Flags))
	})
	m.mounts.Flush(func(spell uint32, mt *Mount) {
		tx.Append(store.LoginRepMount, acct, int32(spell), int16(mt.Flags))
	})
	emitBlocks(tx, acct, m.appearances, store.LoginRepAppearanceBlock, store.LoginDelAppearanceBlock)
	m.favorites.Flush(func(id uint32, f *favorite) {
		if f.State() == entity.New {
			tx.Append(store.LoginInsFavoriteAppearance, acct, int32(id))
			return
		}
		tx.Append(store.LoginDelFavoriteAppearance, acct, int32(id))
	})
	emitBlocks(tx, acct, m.illusions, store.LoginRepIllusionBlock, store.LoginDelIllusionBlock)
	return tx.Len() - start
}

// emitBlocks writes changed nonzero blocks and deletes blocks that became
// zero.
func emitBlocks(tx *store.Transaction, acct int64, b *entity.BitSet, rep, del store.StatementID) {
	b.DirtyBlocks(func(index int, value uint32) {
		if value == 0 {
			tx.Append(del, acct, int16(index))
			return
		}
		tx.Append(rep, acct, int16(index), int64(value))
	})
}

// Committed acknowledges a successful save.
func (m *Manager) Committed() {
	m.toys.Commit()
	m.heirlooms.Commit()
	m.mounts.Commit()
	m.favorites.Commit()
	m.appearances.ClearDirty()
	m.illusions.ClearDirty()
}
