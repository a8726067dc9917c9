// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Currency is one currency balance.
type Currency struct {
	entity.Tracked
	Quantity        uint32
	WeeklyQuantity  uint32
	TrackedQuantity uint32
	Flags           uint16
}

type currencyContent interface {
	Currency(id uint32) (content.CurrencyInfo, bool)
}

// Currencies holds the character's currency balances.
type Currencies struct {
	content currencyContent
	items   *entity.Collection[uint32, *Currency]
}

func newCurrencies(c currencyContent) *Currencies {
	return &Currencies{content: c, items: entity.NewCollection[uint32, *Currency]()}
}

// load restores balances. Unknown currencies are skipped; balances above
// the cap are lowered and saved back.
func (c *Currencies) load(rows []store.CurrencyRow, r *repairs) {
	for _, row := range rows {
		info, ok := c.content.Currency(uint32(row.Currency))
		if !ok {
			r.skip("currency", "currency", row.Currency)
			continue
		}
		cur := &Currency{
			Quantity:        uint32(row.Quantity),
			WeeklyQuantity:  uint32(row.WeeklyQuantity),
			TrackedQuantity: uint32(row.TrackedQuantity),
			Flags:           uint16(row.Flags),
		}
		c.items.Load(uint32(row.Currency), cur)
		if info.MaxQuantity > 0 && cur.Quantity > info.MaxQuantity {
			cur.Quantity = info.MaxQuantity
			cur.MarkChanged()
			r.fixed("currency", "currency", row.Currency)
		}
	}
}

// Quantity returns the balance of id.
func (c *Currencies) Quantity(id uint32) uint32 {
	if cur, ok := c.items.Get(id); ok {
		return cur.Quantity
	}
	return 0
}

// Get returns the balance record of id.
func (c *Currencies) Get(id uint32) (*Currency, bool) { return c.items.Get(id) }

// Modify adds delta to the balance of id, clamped to zero and the
// currency's cap. Gains also count toward the weekly and tracked totals.
// It reports false for unknown currencies.
func (c *Currencies) Modify(id uint32, delta int32) bool {
	info, ok := c.content.Currency(id)
	if !ok {
		return false
	}
	cur, exists := c.items.Get(id)
	if !exists {
		cur = &Currency{}
	}
	qty := int64(cur.Quantity) + int64(delta)
	if qty < 0 {
		qty = 0
	}
	if info.MaxQuantity > 0 && qty > int64(info.MaxQuantity) {
		qty = int64(info.MaxQuantity)
	}
	gained := qty - int64(cur.Quantity)
	if gained == 0 {
		return true
	}
	if !exists {
		c.items.Put(id, cur)
	}
	cur.Quantity = uint32(qty)
	if gained > 0 {
		cur.WeeklyQuantity += uint32(gained)
		cur.TrackedQuantity += uint32(gained)
	}
	cur.MarkChanged()
	return true
}

// ResetWeekly clears every weekly total.
func (c *Currencies) ResetWeekly() {
	c.items.Each(func(_ uint32, cur *Currency) bool {
		if cur.WeeklyQuantity != 0 {
			cur.WeeklyQuantity = 0
			cur.MarkChanged()
		}
		return true
	})
}

// Dirty returns the number of balances needing a statement.
func (c *Currencies) Dirty() int { return c.items.Dirty() }

func (c *Currencies) emit(tx *store.Transaction, guid int64) {
	c.items.Flush(func(id uint32, cur *Currency) {
		stmt := store.CharUpdCurrency
		if cur.State() == entity.New {
			stmt = store.CharInsCurrency
		}
		tx.Append(stmt, guid, int32(id), int32(cur.Quantity), int32(cur.WeeklyQuantity),
			int32(cur.TrackedQuantity), int16(cur.Flags))
	})
}

func (c *Currencies) committed() { c.items.Commit() }
