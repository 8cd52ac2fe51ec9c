package jellyfin

import (
	"context"
	"errors"
	"net/http"
)

// AuthResult is a successful sign-in.
type AuthResult struct {
	AccessToken string
	UserID      string
	UserName    string
}

// AuthenticateByName signs in with a username and password. The result is
// not installed on the client; call SetSession with it.
func (c *Client) AuthenticateByName(ctx context.Context, username, password string) (*AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/Users/AuthenticateByName", nil,
		authRequest{Username: username, Pw: password}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.User.ID == "" {
		return nil, errors.New("server returned an incomplete sign-in response")
	}
	return &AuthResult{
		AccessToken: resp.AccessToken,
		UserID:      resp.User.ID,
		UserName:    resp.User.Name,
	}, nil
}

// CurrentUser returns the user the installed token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (id, name string, err error) {
	if c.Token() == "" {
		return "", "", ErrNotAuthenticated
	}
	var u userDTO
	if err := c.do(ctx, http.MethodGet, "/Users/Me", nil, nil, &u); err != nil {
		return "", "", err
	}
	return u.ID, u.Name, nil
}
