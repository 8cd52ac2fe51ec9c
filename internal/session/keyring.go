package session

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const service = "jellywaves"

// ErrNotFound is returned when no credential is stored under a key.
var ErrNotFound = errors.New("credential not found")

// Store persists tokens and refresh passwords.
type Store interface {
	UserID(serverURL, username string) (string, error)
	SetUserID(serverURL, username, userID string) error
	Token(userID string) (string, error)
	SetToken(userID, token string) error
	Password(userID string) (string, error)
	SetPassword(userID, password string) error
	Forget(serverURL, username, userID string) error
}

// KeyringStore keeps credentials in the OS keyring.
type KeyringStore struct{}

var _ Store = KeyringStore{}

func userKey(serverURL, username string) string { return username + "@" + serverURL }
func tokenKey(userID string) string             { return userID + "-token" }
func passwordKey(userID string) string          { return userID + "-refreshPassword" }

// UserID returns the user id last signed in as username on serverURL.
func (KeyringStore) UserID(serverURL, username string) (string, error) {
	return get(userKey(serverURL, username))
}

// SetUserID remembers the user id for username on serverURL.
func (KeyringStore) SetUserID(serverURL, username, userID string) error {
	return keyring.Set(service, userKey(serverURL, username), userID)
}

// Token returns the stored access token of userID.
func (KeyringStore) Token(userID string) (string, error) {
	return get(tokenKey(userID))
}

// SetToken stores the access token of userID.
func (KeyringStore) SetToken(userID, token string) error {
	return keyring.Set(service, tokenKey(userID), token)
}

// Password returns the password kept for token refresh.
func (KeyringStore) Password(userID string) (string, error) {
	return get(passwordKey(userID))
}

// SetPassword keeps the password used for token refresh.
func (KeyringStore) SetPassword(userID, password string) error {
	return keyring.Set(service, passwordKey(userID), password)
}

// Forget deletes everything stored for the user. Missing entries are ignored.
func (KeyringStore) Forget(serverURL, username, userID string) error {
	var errs []error
	for _, key := range []string{userKey(serverURL, username), tokenKey(userID), passwordKey(userID)} {
		if err := keyring.Delete(service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func get(key string) (string, error) {
	v, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return v, err
}
