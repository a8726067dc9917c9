// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CypherCore/CypherCore-sub002/pkg/errutil"
)

func newMockExecutor(t *testing.T, scope Scope) (*Executor, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return NewExecutor(mock, scope, WithRetry(2, time.Millisecond)), mock
}

func TestExecutor_Commit_EmptyTransactionTouchesNothing(t *testing.T) {
	exec, mock := newMockExecutor(t, ScopeCharacter)

	require.NoError(t, exec.Commit(context.Background(), NewTransaction(ScopeCharacter)))
	require.NoError(t, exec.Commit(context.Background(), nil))

	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestExecutor_Commit_RunsStatementsInOrder(t *testing.T) {
	exec, mock := newMockExecutor(t, ScopeCharacter)

	tx := NewTransaction(ScopeCharacter)
	tx.Append(CharUpdSkill, int64(7), int32(164), int32(75), int32(150))
	tx.Append(CharDelSpell, int64(7), int32(133))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE character_skills SET value`).
		WithArgs(int64(7), int32(164), int32(75), int32(150)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM character_spell`).
		WithArgs(int64(7), int32(133)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, exec.Commit(context.Background(), tx))
	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestExecutor_Commit_ExecFailureRollsBack(t *testing.T) {
	exec, mock := newMockExecutor(t, ScopeCharacter)

	tx := NewTransaction(ScopeCharacter)
	tx.Append(CharDelSkill, int64(7), int32(164))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM character_skills`).
		WithArgs(int64(7), int32(164)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := exec.Commit(context.Background(), tx)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "TX_EXEC_FAILED")
	errutil.AssertErrorContext(t, err, "statement", "CharDelSkill")
	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestExecutor_Commit_BeginFailure(t *testing.T) {
	exec, mock := newMockExecutor(t, ScopeLogin)

	tx := NewTransaction(ScopeLogin)
	tx.Append(LoginRepMount, int64(1), int32(458), int16(0))

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := exec.Commit(context.Background(), tx)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "TX_BEGIN_FAILED")
	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestExecutor_Commit_RetriesSerializationFailure(t *testing.T) {
	exec, mock := newMockExecutor(t, ScopeCharacter)

	tx := NewTransaction(ScopeCharacter)
	tx.Append(CharDelMail, int64(99))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM mail`).
		WithArgs(int64(99)).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM mail`).
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, exec.Commit(context.Background(), tx))
	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestExecutor_Commit_GivesUpAfterMaxRetries(t *testing.T) {
	exec, mock := newMockExecutor(t, ScopeCharacter)

	tx := NewTransaction(ScopeCharacter)
	tx.Append(CharDelMail, int64(99))

	deadlock := &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
	for range 3 {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM mail`).WithArgs(int64(99)).WillReturnError(deadlock)
		mock.ExpectRollback()
	}

	err := exec.Commit(context.Background(), tx)
	require.Error(t, err)
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, pgerrcode.DeadlockDetected, pgErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestExecutor_Commit_ScopeMismatch(t *testing.T) {
	exec, mock := newMockExecutor(t, ScopeCharacter)

	tx := NewTransaction(ScopeLogin)
	tx.Append(LoginDelAppearanceBlock, int64(1), int16(0))

	err := exec.Commit(context.Background(), tx)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "TX_SCOPE_MISMATCH")
	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, true},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, true},
		{"connection failure", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, true},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}
