package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/llehouerou/jellywaves/internal/jellyfin"
)

// ErrNoPassword is returned by Refresh when no password was kept for the user.
var ErrNoPassword = errors.New("no stored password for token refresh")

// Authenticator signs a user in by name.
type Authenticator interface {
	AuthenticateByName(ctx context.Context, username, password string) (*jellyfin.AuthResult, error)
}

var _ Authenticator = (*jellyfin.Client)(nil)

// SignIn authenticates and stores the resulting credentials. The password is
// kept so the token can be refreshed later.
func SignIn(ctx context.Context, auth Authenticator, store Store, serverURL, username, password string) (*Session, error) {
	res, err := auth.AuthenticateByName(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("signing in as %s: %w", username, err)
	}
	s := &Session{
		ServerURL: serverURL,
		UserID:    res.UserID,
		UserName:  res.UserName,
		Token:     res.AccessToken,
	}
	if err := errors.Join(
		store.SetUserID(serverURL, username, res.UserID),
		store.SetToken(res.UserID, res.AccessToken),
		store.SetPassword(res.UserID, password),
	); err != nil {
		logrus.WithField("component", "session").WithError(err).Warn("failed to store credentials")
	}
	return s, nil
}

// Restore rebuilds the last session of username on serverURL from the store.
func Restore(store Store, serverURL, username string) (*Session, error) {
	userID, err := store.UserID(serverURL, username)
	if err != nil {
		return nil, err
	}
	token, err := store.Token(userID)
	if err != nil {
		return nil, err
	}
	return &Session{ServerURL: serverURL, UserID: userID, UserName: username, Token: token}, nil
}

// Refresher renews expired tokens with the stored password. Concurrent
// refreshes for one user share a single sign-in.
type Refresher struct {
	auth  Authenticator
	store Store
	group singleflight.Group
	log   *logrus.Entry
}

// NewRefresher creates a refresher.
func NewRefresher(auth Authenticator, store Store) *Refresher {
	return &Refresher{
		auth:  auth,
		store: store,
		log:   logrus.WithField("component", "session"),
	}
}

// Refresh signs s's user in again and returns the renewed session.
func (r *Refresher) Refresh(ctx context.Context, s *Session) (*Session, error) {
	v, err, shared := r.group.Do(s.UserID, func() (any, error) {
		return r.refresh(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.log.WithField("user", s.UserName).Debug("joined in-flight token refresh")
	}
	return v.(*Session), nil
}

func (r *Refresher) refresh(ctx context.Context, s *Session) (*Session, error) {
	log := r.log.WithField("user", s.UserName)
	password, err := r.store.Password(s.UserID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoPassword
	}
	if err != nil {
		return nil, fmt.Errorf("reading stored password: %w", err)
	}

	log.Info("refreshing token")
	res, err := r.auth.AuthenticateByName(ctx, s.UserName, password)
	if err != nil {
		log.WithError(err).Warn("token refresh failed")
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	renewed := *s
	renewed.Token = res.AccessToken
	if err := r.store.SetToken(s.UserID, res.AccessToken); err != nil {
		log.WithError(err).Warn("failed to store refreshed token")
	}
	log.Info("token refreshed")
	return &renewed, nil
}
