package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/jellywaves/internal/lastfm"
)

func withLastfm(t *testing.T) Model {
	t.Helper()
	m, _ := newTestModel(t)
	m.deps.Lastfm = lastfm.New("key", "secret")
	m.screen = screenMain
	return m
}

func TestLastfm_SessionLinksAndStartsRetries(t *testing.T) {
	m := withLastfm(t)

	m, cmd := update(t, m, lastfm.SessionResultMsg{Username: "bob", SessionKey: "sk"})
	assert.True(t, m.deps.Lastfm.IsAuthenticated())
	assert.Equal(t, "Last.fm linked as bob", m.status)
	assert.True(t, m.lastfmRetrying)
	assert.NotNil(t, cmd)

	saved, err := m.deps.State.GetLastfmSession()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "bob", saved.Username)
	assert.Equal(t, "sk", saved.SessionKey)

	_, cmd = update(t, m, lastfm.SessionResultMsg{Username: "bob", SessionKey: "sk"})
	assert.Nil(t, cmd, "retry tick already running")
}

func TestLastfm_SessionError(t *testing.T) {
	m := withLastfm(t)

	m, _ = update(t, m, lastfm.SessionResultMsg{Err: errors.New("token not authorized")})
	assert.False(t, m.deps.Lastfm.IsAuthenticated())
	assert.Equal(t, "Failed to link Last.fm account: token not authorized", m.status)
}

func TestLastfm_KeyFlow(t *testing.T) {
	m := withLastfm(t)

	m, cmd := update(t, m, key("F"))
	assert.NotNil(t, cmd, "first press requests a token")
	assert.Empty(t, m.lastfmToken)

	m.lastfmToken = "tok"
	m, cmd = update(t, m, key("F"))
	assert.NotNil(t, cmd, "second press exchanges the token")
	assert.Empty(t, m.lastfmToken)

	m, _ = update(t, m, lastfm.SessionResultMsg{Username: "bob", SessionKey: "sk"})
	m, cmd = update(t, m, key("F"))
	assert.Nil(t, cmd)
	assert.False(t, m.deps.Lastfm.IsAuthenticated())
	assert.Equal(t, "Last.fm unlinked", m.status)

	saved, err := m.deps.State.GetLastfmSession()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestLastfm_RetryStopsWhenUnlinked(t *testing.T) {
	m := withLastfm(t)
	m.lastfmRetrying = true

	m, cmd := update(t, m, lastfm.RetryPendingMsg{})
	assert.Nil(t, cmd)
	assert.False(t, m.lastfmRetrying)
}

func TestLastfm_KeyIgnoredWithoutClient(t *testing.T) {
	m, _ := newTestModel(t)
	m.screen = screenMain

	m, cmd := update(t, m, key("F"))
	assert.Nil(t, cmd)
	assert.Empty(t, m.status)
}
