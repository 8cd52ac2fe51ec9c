package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/llehouerou/jellywaves/internal/jellyfin"
)

// fakeAuth blocks each sign-in until release is closed.
type fakeAuth struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	err     error
}

func (a *fakeAuth) AuthenticateByName(ctx context.Context, username, password string) (*jellyfin.AuthResult, error) {
	a.mu.Lock()
	a.calls++
	n := a.calls
	a.mu.Unlock()

	if a.release != nil {
		select {
		case <-a.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	if password != "secret" {
		return nil, errors.New("bad password")
	}
	return &jellyfin.AuthResult{
		AccessToken: "token-" + string(rune('0'+n)),
		UserID:      "id-" + username,
		UserName:    username,
	}, nil
}

func (a *fakeAuth) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func TestSignInAndRestore(t *testing.T) {
	keyring.MockInit()
	store := KeyringStore{}

	s, err := SignIn(context.Background(), &fakeAuth{}, store, "http://jf", "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, &Session{ServerURL: "http://jf", UserID: "id-alice", UserName: "alice", Token: "token-1"}, s)

	restored, err := Restore(store, "http://jf", "alice")
	require.NoError(t, err)
	assert.Equal(t, s, restored)

	pw, err := store.Password("id-alice")
	require.NoError(t, err)
	assert.Equal(t, "secret", pw)

	require.NoError(t, store.Forget("http://jf", "alice", "id-alice"))
	_, err = Restore(store, "http://jf", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSignIn_Failure(t *testing.T) {
	keyring.MockInit()
	_, err := SignIn(context.Background(), &fakeAuth{}, KeyringStore{}, "http://jf", "alice", "wrong")
	require.Error(t, err)

	_, err = KeyringStore{}.Token("id-alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefresher_CollapsesConcurrentRefreshes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		keyring.MockInit()
		store := KeyringStore{}
		require.NoError(t, store.SetPassword("id-alice", "secret"))

		auth := &fakeAuth{release: make(chan struct{})}
		r := NewRefresher(auth, store)
		expired := &Session{ServerURL: "http://jf", UserID: "id-alice", UserName: "alice", Token: "old"}

		var wg sync.WaitGroup
		results := make([]*Session, 4)
		for i := range results {
			wg.Go(func() {
				s, err := r.Refresh(context.Background(), expired)
				assert.NoError(t, err)
				results[i] = s
			})
		}
		synctest.Wait()
		close(auth.release)
		wg.Wait()

		assert.Equal(t, 1, auth.count())
		for _, s := range results {
			require.NotNil(t, s)
			assert.Equal(t, "token-1", s.Token)
		}
		assert.Equal(t, "old", expired.Token)

		token, err := store.Token("id-alice")
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
	})
}

func TestRefresher_SeparateUsers(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		keyring.MockInit()
		store := KeyringStore{}
		require.NoError(t, store.SetPassword("id-alice", "secret"))
		require.NoError(t, store.SetPassword("id-bob", "secret"))

		auth := &fakeAuth{release: make(chan struct{})}
		r := NewRefresher(auth, store)

		var wg sync.WaitGroup
		for _, name := range []string{"alice", "bob"} {
			wg.Go(func() {
				_, err := r.Refresh(context.Background(), &Session{UserID: "id-" + name, UserName: name})
				assert.NoError(t, err)
			})
		}
		synctest.Wait()
		close(auth.release)
		wg.Wait()

		assert.Equal(t, 2, auth.count())
	})
}

func TestRefresher_NoPassword(t *testing.T) {
	keyring.MockInit()
	auth := &fakeAuth{}
	r := NewRefresher(auth, KeyringStore{})

	_, err := r.Refresh(context.Background(), &Session{UserID: "id-carol", UserName: "carol"})
	require.ErrorIs(t, err, ErrNoPassword)
	assert.Zero(t, auth.count())
}

func TestRefresher_AuthError(t *testing.T) {
	keyring.MockInit()
	store := KeyringStore{}
	require.NoError(t, store.SetPassword("id-alice", "secret"))
	auth := &fakeAuth{err: jellyfin.ErrNotAuthenticated}

	_, err := NewRefresher(auth, store).Refresh(context.Background(), &Session{UserID: "id-alice", UserName: "alice"})
	assert.ErrorIs(t, err, jellyfin.ErrNotAuthenticated)
}
