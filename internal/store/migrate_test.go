// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CypherCore/CypherCore-sub002/pkg/errutil"
)

type mockMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	versionVal     uint
	versionErr     error
	dirty          bool
	forceErr       error
	closeSourceErr error
	closeDbErr     error
}

func (m *mockMigrate) Up() error                    { return m.upErr }
func (m *mockMigrate) Down() error                  { return m.downErr }
func (m *mockMigrate) Steps(_ int) error            { return m.stepsErr }
func (m *mockMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *mockMigrate) Force(_ int) error            { return m.forceErr }
func (m *mockMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDbErr }

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator(ScopeCharacter, "invalid://url")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://h:5432/chars", migrateURL("postgres://h:5432/chars"))
	assert.Equal(t, "pgx5://h:5432/login", migrateURL("postgresql://h:5432/login"))
	assert.Equal(t, "pgx5://h/x", migrateURL("pgx5://h/x"))
}

func TestMigrator_Up(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"success", nil, false},
		{"no change", migrate.ErrNoChange, false},
		{"failure", errors.New("syntax error"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &mockMigrate{upErr: tt.err}, scope: ScopeLogin}
			err := m.Up()
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
				errutil.AssertErrorContext(t, err, "scope", "login")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestMigrator_DownAndSteps(t *testing.T) {
	m := &Migrator{m: &mockMigrate{downErr: migrate.ErrNoChange, stepsErr: errors.New("locked")}}
	require.NoError(t, m.Down())
	err := m.Steps(-1)
	errutil.AssertErrorCode(t, err, "MIGRATION_STEPS_FAILED")
	errutil.AssertErrorContext(t, err, "steps", -1)
}

func TestMigrator_Version(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	m = &Migrator{m: &mockMigrate{versionVal: 3, dirty: true}}
	v, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), v)
	assert.True(t, dirty)

	m = &Migrator{m: &mockMigrate{versionErr: errors.New("no table")}}
	_, _, err = m.Version()
	errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
}

func TestMigrator_Force(t *testing.T) {
	m := &Migrator{m: &mockMigrate{}}
	errutil.AssertErrorCode(t, m.Force(-1), "INVALID_VERSION")
	require.NoError(t, m.Force(2))
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name      string
		src, db   error
		component string
	}{
		{"source", errors.New("src"), nil, "source"},
		{"database", nil, errors.New("db"), "database"},
		{"both", errors.New("src"), errors.New("db"), "both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &mockMigrate{closeSourceErr: tt.src, closeDbErr: tt.db}}
			err := m.Close()
			errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			errutil.AssertErrorContext(t, err, "component", tt.component)
		})
	}
	require.NoError(t, (&Migrator{m: &mockMigrate{}}).Close())
}

func TestMigrationVersions_Embedded(t *testing.T) {
	chars, err := MigrationVersions(ScopeCharacter)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3, 4, 5}, chars)

	login, err := MigrationVersions(ScopeLogin)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, login)
}

func TestMigrationName(t *testing.T) {
	name, err := MigrationName(ScopeCharacter, 3)
	require.NoError(t, err)
	assert.Equal(t, "000003_items", name)

	name, err = MigrationName(ScopeLogin, 42)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestMigrator_Pending(t *testing.T) {
	m := &Migrator{m: &mockMigrate{versionVal: 2}, scope: ScopeCharacter}
	pending, err := m.Pending()
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 4, 5}, pending)

	m = &Migrator{m: &mockMigrate{versionVal: 1}, scope: ScopeLogin}
	pending, err = m.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}
