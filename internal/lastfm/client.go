package lastfm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shkh/lastfm-go/lastfm"
	"github.com/sirupsen/logrus"
)

// ErrNotAuthenticated is returned when no Last.fm account is linked.
var ErrNotAuthenticated = errors.New("not authenticated")

const authURL = "https://www.last.fm/api/auth/?api_key=%s&token=%s"

// Client submits plays for the linked account. It is safe for concurrent
// use: scrobblers submit from their own goroutines while the UI links and
// unlinks the account.
type Client struct {
	api    *lastfm.Api
	apiKey string
	log    *logrus.Entry

	mu         sync.RWMutex
	sessionKey string
}

// New creates a client for the given API credentials, not yet linked.
func New(apiKey, apiSecret string) *Client {
	return &Client{
		api:    lastfm.New(apiKey, apiSecret),
		apiKey: apiKey,
		log:    logrus.WithField("component", "lastfm"),
	}
}

// SetSessionKey links the client to an account. An empty key unlinks it.
func (c *Client) SetSessionKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionKey = key
	c.api.SetSession(key)
}

// IsAuthenticated reports whether an account is linked.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionKey != ""
}

// GetToken requests a token for the desktop auth flow.
func (c *Client) GetToken() (string, error) {
	token, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// GetAuthURL returns the page where the user approves token.
func (c *Client) GetAuthURL(token string) string {
	return fmt.Sprintf(authURL, c.apiKey, token)
}

// GetSession exchanges an approved token for a session key and links the
// client. The username is best effort and falls back to "unknown".
func (c *Client) GetSession(token string) (username, sessionKey string, err error) {
	c.mu.Lock()
	err = c.api.LoginWithToken(token)
	if err == nil {
		c.sessionKey = c.api.GetSessionKey()
	}
	sessionKey = c.sessionKey
	c.mu.Unlock()
	if err != nil {
		return "", "", fmt.Errorf("get session: %w", err)
	}

	info, err := c.api.User.GetInfo(nil)
	if err != nil {
		c.log.WithError(err).Warn("linked account but could not read its name")
		return "unknown", sessionKey, nil
	}
	return info.Name, sessionKey, nil
}

// UpdateNowPlaying announces track as playing now.
func (c *Client) UpdateNowPlaying(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.UpdateNowPlaying(track.params()); err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

// Scrobble records a play of track started at track.Timestamp.
func (c *Client) Scrobble(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	p := track.params()
	p["timestamp"] = track.Timestamp.Unix()
	if _, err := c.api.Track.Scrobble(p); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"itemID": track.ItemID,
		"track":  track.Track,
	}).Debug("scrobbled")
	return nil
}
