// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/CypherCore/CypherCore-sub002/internal/character"
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

var _ = Describe("Character persistence", func() {
	var e *env

	BeforeEach(func() {
		var err error
		e, err = newEnv()
		Expect(err).NotTo(HaveOccurred())
	})

	mustLoad := func(b *store.LoadBatch) (*character.Player, *store.Transaction) {
		p, repair, err := e.load(b)
		Expect(err).NotTo(HaveOccurred())
		return p, repair
	}

	mustSave := func(p *character.Player) *store.Transaction {
		_, char, _, err := save(p, false)
		Expect(err).NotTo(HaveOccurred())
		return char
	}

	Describe("loading", func() {
		It("relocates a character whose map no longer exists", func() {
			b := baseBatch()
			b.Character.Map = int32(mapRemoved)
			b.Homebind = nil

			p, _ := mustLoad(b)
			Expect(p.Position()).To(Equal(northshire))
		})

		It("drops items with unknown templates and keeps the rest", func() {
			b := baseBatch()
			b.Items = []store.ItemRow{
				{Guid: 1, Entry: int32(itemSword), Count: 1, Slot: 15},
				{Guid: 2, Entry: int32(itemMissing), Count: 1, Slot: 24},
				{Guid: 3, Entry: int32(itemBread), Count: 5, Slot: 25},
			}

			p, repair := mustLoad(b)
			Expect(repair.Count(store.CharDelItem)).To(Equal(1))
			Expect(repair.Statements()[indexOf(repair, store.CharDelItem)].Args).To(ContainElement(int64(2)))
			_, ok := p.Inventory().Get(2)
			Expect(ok).To(BeFalse())
			Expect(p.Inventory().Len()).To(Equal(2))
		})
	})

	Describe("binding", func() {
		It("rebinding a key to another save updates the bind in place", func() {
			p, _ := mustLoad(boundBatch(bindRow(40, mapShadowfang, content.DifficultyNormal, true)))
			first, ok := p.Binds().Get(mapShadowfang, content.DifficultyNormal)
			Expect(ok).To(BeTrue())
			s1 := first.Save()
			Expect(s1.Refs()).To(Equal(1))

			s2 := e.registry.Create(store.NewTransaction(store.ScopeCharacter), mapShadowfang, content.DifficultyNormal, e.now)
			p.BindToInstance(s2, true)

			Expect(s1.Refs()).To(BeZero())
			Expect(s2.Refs()).To(Equal(1))
			Expect(p.Binds().Len()).To(Equal(1))
			bind, _ := p.Binds().Get(mapShadowfang, content.DifficultyNormal)
			Expect(bind.Save()).To(BeIdenticalTo(s2))

			char := mustSave(p)
			Expect(char.Count(store.CharUpdBind)).To(Equal(1))
			Expect(char.Count(store.CharInsBind)).To(BeZero())
		})

		It("a permanent bind keeps its save from resetting", func() {
			p, _ := mustLoad(boundBatch(bindRow(40, mapShadowfang, content.DifficultyNormal, true)))
			bind, _ := p.Binds().Get(mapShadowfang, content.DifficultyNormal)

			Expect(bind.Save().CanReset()).To(BeFalse())
			Expect(p.ResetInstances(instance.ResetAll, false).Reset).To(BeEmpty())
		})

		It("ResetAll clears the normal dungeon bind but not the heroic one", func() {
			p, _ := mustLoad(boundBatch(
				bindRow(40, mapShadowfang, content.DifficultyNormal, false),
				bindRow(41, mapShadowfang, content.DifficultyHeroic, false),
			))

			p.ResetInstances(instance.ResetAll, false)
			_, normal := p.Binds().Get(mapShadowfang, content.DifficultyNormal)
			_, heroic := p.Binds().Get(mapShadowfang, content.DifficultyHeroic)
			Expect(normal).To(BeFalse())
			Expect(heroic).To(BeTrue())
		})
	})

	Describe("saving", func() {
		It("a freshly loaded character saves nothing", func() {
			p, _ := mustLoad(fullBatch())
			Expect(p.Dirty()).To(BeFalse())
			Expect(mustSave(p).Empty()).To(BeTrue())
		})

		It("writes only on the first of two saves", func() {
			p, _ := mustLoad(fullBatch())
			Expect(p.Spells().Learn(spellGhost)).To(BeTrue())

			Expect(mustSave(p).Len()).To(Equal(1))
			p.SaveCommitted()
			Expect(mustSave(p).Empty()).To(BeTrue())
		})

		It("issues one statement per dirty entity", func() {
			p, _ := mustLoad(fullBatch())
			Expect(p.Currencies().Modify(currencyHonor, 5)).To(BeTrue())
			Expect(p.Spells().Learn(spellGhost)).To(BeTrue())
			Expect(p.Spells().Unlearn(spellFire)).To(BeTrue())
			Expect(p.Skills().Set(171, 1, 75)).To(BeTrue())

			dirty := p.Currencies().Dirty() + p.Spells().Dirty() + p.Skills().Dirty()
			Expect(dirty).To(Equal(4))
			Expect(mustSave(p).Len()).To(Equal(dirty))
		})

		It("a committed save settles every entity", func() {
			p, _ := mustLoad(fullBatch())
			Expect(p.Spells().Unlearn(spellFire)).To(BeTrue())
			Expect(p.Skills().Set(171, 1, 75)).To(BeTrue())
			mustSave(p)

			p.SaveCommitted()
			Expect(p.Spells().Dirty()).To(BeZero())
			Expect(p.Skills().Dirty()).To(BeZero())
			Expect(p.Spells().Known(spellFire)).To(BeFalse())
			Expect(p.Spells().Len()).To(BeZero())
			Expect(p.Skills().Has(171)).To(BeTrue())
		})
	})
})
