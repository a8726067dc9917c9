// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequireOops fails the test now unless err carries an oops error, and
// returns it.
func RequireOops(t testing.TB, err error) oops.OopsError {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	return oopsErr
}

// AssertErrorCode asserts that err is an oops error with the given code.
func AssertErrorCode(t testing.TB, err error, code string) {
	t.Helper()
	assert.Equal(t, code, RequireOops(t, err).Code())
}

// AssertErrorContext asserts that err is an oops error carrying key=value
// anywhere in its wrap chain.
func AssertErrorContext(t testing.TB, err error, key string, value any) {
	t.Helper()
	values := RequireOops(t, err).Context()
	if assert.Contains(t, values, key) {
		assert.Equal(t, value, values[key], "context %q", key)
	}
}

// AssertOops checks the code and a list of key, value context pairs in one
// call:
//
//	errutil.AssertOops(t, err, "CHARACTER_LOAD_FAILED", "guid", guid, "reason", "banned")
func AssertOops(t testing.TB, err error, code string, kv ...any) {
	t.Helper()
	require.Zero(t, len(kv)%2, "context pairs must come as key, value")
	oopsErr := RequireOops(t, err)
	assert.Equal(t, code, oopsErr.Code())
	values := oopsErr.Context()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		require.True(t, ok, "context key %v is not a string", kv[i])
		if assert.Contains(t, values, key) {
			assert.Equal(t, kv[i+1], values[key], "context %q", key)
		}
	}
}
