// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
	"github.com/CypherCore/CypherCore-sub002/pkg/errutil"
)

type fakeSource struct {
	batch   *store.LoadBatch
	account *store.AccountBatch
}

func (s *fakeSource) LoadCharacter(context.Context, int64, int64, time.Time) (*store.LoadBatch, error) {
	return s.batch, nil
}

func (s *fakeSource) LoadAccount(context.Context, int64) (*store.AccountBatch, error) {
	return s.account, nil
}

func (s *fakeSource) LoadInstances(context.Context) ([]store.InstanceRow, error) { return nil, nil }

func storedCharacter() *store.LoadBatch {
	return &store.LoadBatch{
		Character: &store.CharacterRow{
			Guid: 100, Account: 7, Name: "Anduin", Race: 1, Class: 1, Level: 10,
			X: -8949.95, Y: -132.493, Z: 83.5312, Health: 100, Money: 250, TaxiPath: []int32{},
			DungeonDifficulty:    int16(content.DifficultyNormal),
			RaidDifficulty:       int16(content.DifficultyNormalRaid),
			LegacyRaidDifficulty: int16(content.Difficulty10N),
			LogoutTime:           time.Now().Add(-time.Hour).Unix(),
		},
		Homebind: &store.HomebindRow{PositionRow: store.PositionRow{X: -8949.95, Y: -132.493, Z: 83.5312}, Zone: 12},
	}
}

func inspectDeps(t *testing.T, src *fakeSource) *Deps {
	t.Helper()
	return &Deps{
		OpenPool: func(context.Context, string) (Pool, error) {
			pool, err := pgxmock.NewPool()
			require.NoError(t, err)
			return pool, nil
		},
		NewSource: func(Pool, Pool) CharacterSource { return src },
	}
}

func inspect(t *testing.T, src *fakeSource, args ...string) (InspectReport, error) {
	t.Helper()
	isolate(t)
	argv := append([]string{"--content", fixtureContent, "--log-format", "text"}, dbFlags...)
	argv = append(argv, "character", "inspect")
	out, err := execute(t, inspectDeps(t, src), append(argv, args...)...)
	var report InspectReport
	if err == nil {
		require.NoError(t, json.Unmarshal([]byte(out), &report))
	}
	return report, err
}

func TestInspect_PrintsTheLoadedCharacter(t *testing.T) {
	report, err := inspect(t, &fakeSource{batch: storedCharacter(), account: &store.AccountBatch{}}, "100", "--account", "7")
	require.NoError(t, err)

	assert.True(t, report.Loaded)
	assert.Empty(t, report.Refused)
	assert.Equal(t, "Anduin", report.Name)
	assert.Equal(t, uint8(10), report.Level)
	assert.Equal(t, uint64(250), report.Money)
	assert.Empty(t, report.Binds)
	assert.False(t, report.Repaired)
}

func TestInspect_RefusedLoad(t *testing.T) {
	report, err := inspect(t, &fakeSource{batch: storedCharacter(), account: &store.AccountBatch{}}, "100", "--account", "8")
	require.NoError(t, err)
	assert.False(t, report.Loaded)
	assert.Equal(t, "account_mismatch", report.Refused)

	report, err = inspect(t, &fakeSource{batch: &store.LoadBatch{}, account: &store.AccountBatch{}}, "100", "--account", "7")
	require.NoError(t, err)
	assert.Equal(t, "not_found", report.Refused)
}

func TestInspect_Arguments(t *testing.T) {
	src := &fakeSource{batch: storedCharacter(), account: &store.AccountBatch{}}

	_, err := inspect(t, src, "abc", "--account", "7")
	errutil.AssertErrorCode(t, err, "INVALID_GUID")

	_, err = inspect(t, src, "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account")
}
