package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authRecord struct {
	Token     string `json:"token"`
	Onboarded bool   `json:"onboarded"`
}

func TestRoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("auth", authRecord{Token: "tok-123", Onboarded: true}))

	reopened, err := Open(path)
	require.NoError(t, err)

	var rec authRecord
	ok, err := reopened.Get("auth", &rec)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-123", rec.Token)
	assert.True(t, rec.Onboarded)
}

func TestMissingKey(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	var rec authRecord
	ok, err := s.Get("auth", &rec)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Set("notifications", map[string]bool{"enabled": true}))
	require.NoError(t, s.Delete("notifications"))
	require.NoError(t, s.Delete("notifications")) // idempotent

	reopened, err := Open(path)
	require.NoError(t, err)
	var out map[string]bool
	ok, err := reopened.Get("notifications", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}
