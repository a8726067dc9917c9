// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

func insertCharacter(tx *store.Transaction, guid int64, name string) {
	tx.Append(store.CharInsCharacter,
		guid, int64(1), name, int16(1), int16(1), int16(0), int16(1), int32(0), int64(0),
		int16(0), int16(0), int16(0), int16(0), int32(0), int32(0), int16(1), int16(14), int16(3),
		float32(-8949.95), float32(-132.49), float32(83.53), float32(0), int64(0), []int32{},
		int32(50), int32(0), int32(0), int32(0), int16(0), int32(0), int32(0), int64(0))
}

var _ = Describe("Executor against PostgreSQL", func() {
	var (
		ctx    context.Context
		chars  *store.Executor
		login  *store.Executor
		loader *store.Loader
	)

	BeforeEach(func() {
		ctx = context.Background()
		chars = store.NewExecutor(charPool, store.ScopeCharacter)
		login = store.NewExecutor(loginPool, store.ScopeLogin)
		loader = store.NewLoader(charPool, loginPool)
	})

	It("round-trips a new character through the loader", func() {
		tx := store.NewTransaction(store.ScopeCharacter)
		insertCharacter(tx, 100, "Anduin")
		tx.Append(store.CharRepHomebind, int64(100), int32(0), int32(12),
			float32(-8949.95), float32(-132.49), float32(83.53), float32(0))
		tx.Append(store.CharInsSkill, int64(100), int32(164), int32(1), int32(75))
		Expect(chars.Commit(ctx, tx)).To(Succeed())

		batch, err := loader.LoadCharacter(ctx, 100, 1, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(batch.Character).NotTo(BeNil())
		Expect(batch.Character.Name).To(Equal("Anduin"))
		Expect(batch.Homebind).NotTo(BeNil())
		Expect(batch.Homebind.Zone).To(Equal(int32(12)))
		Expect(batch.Skills).To(ConsistOf(store.SkillRow{Skill: 164, Value: 1, Max: 75}))
	})

	It("rolls back every statement when one fails", func() {
		tx := store.NewTransaction(store.ScopeCharacter)
		insertCharacter(tx, 101, "Varian")
		// Duplicate name violates the unique constraint.
		insertCharacter(tx, 102, "Varian")
		Expect(chars.Commit(ctx, tx)).NotTo(Succeed())

		batch, err := loader.LoadCharacter(ctx, 101, 1, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(batch.Character).To(BeNil())
	})

	It("persists and clears appearance blocks on the login scope", func() {
		tx := store.NewTransaction(store.ScopeLogin)
		tx.Append(store.LoginRepAppearanceBlock, int64(7), int16(0), int64(0b101))
		tx.Append(store.LoginRepAppearanceBlock, int64(7), int16(1), int64(1))
		Expect(login.Commit(ctx, tx)).To(Succeed())

		clearTx := store.NewTransaction(store.ScopeLogin)
		clearTx.Append(store.LoginDelAppearanceBlock, int64(7), int16(1))
		Expect(login.Commit(ctx, clearTx)).To(Succeed())

		account, err := loader.LoadAccount(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(account.Appearances).To(Equal([]store.BlockRow{{Index: 0, Mask: 0b101}}))
	})
})
