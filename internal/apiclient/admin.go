package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"giftfinder/internal/domain"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string           `json:"token"`
	Message string           `json:"message"`
	Admin   domain.AdminInfo `json:"admin"`
}

// AdminLogin exchanges credentials for a bearer token and stores it in the
// bound session.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (string, error) {
	const op = "AdminLogin"
	if c.session == nil {
		return "", ErrNoSession
	}
	var out loginResponse
	err := c.do(ctx, call{
		op:       op,
		method:   http.MethodPost,
		path:     "/admin/login",
		body:     credentials{Username: username, Password: password},
		fallback: "Login failed",
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &RequestError{Op: op, Status: http.StatusOK, Message: "Login failed"}
	}
	if err := c.session.SetToken(out.Token); err != nil {
		return "", err
	}
	return out.Token, nil
}

// AdminLogout forgets the local token and tells the API, ignoring any
// failure from the API.
func (c *Client) AdminLogout(ctx context.Context) error {
	if c.session == nil {
		return ErrNoSession
	}
	tok := c.token()
	if err := c.session.ClearToken(); err != nil {
		return err
	}
	if tok == "" {
		return nil
	}
	bound := c.WithSession(staticToken(tok))
	if err := bound.do(ctx, call{op: "AdminLogout", method: http.MethodPost, path: "/admin/logout", auth: true, fallback: "Logout failed"}, nil); err != nil {
		c.logger.WithError(err).Info("apiclient: upstream logout ignored")
	}
	return nil
}

type checkResponse struct {
	Authenticated bool             `json:"authenticated"`
	Admin         domain.AdminInfo `json:"admin"`
}

func (c *Client) AdminCheck(ctx context.Context) (domain.AdminInfo, error) {
	var out checkResponse
	err := c.do(ctx, call{op: "AdminCheck", method: http.MethodGet, path: "/admin/check", auth: true, fallback: "Not authenticated"}, &out)
	if err != nil {
		return domain.AdminInfo{}, err
	}
	if !out.Authenticated {
		return domain.AdminInfo{}, &RequestError{Op: "AdminCheck", Status: http.StatusUnauthorized, Message: "Not authenticated"}
	}
	return out.Admin, nil
}

func (c *Client) AdminStats(ctx context.Context) (domain.Stats, error) {
	var out domain.Stats
	err := c.do(ctx, call{op: "AdminStats", method: http.MethodGet, path: "/admin/stats", auth: true, fallback: "Failed to fetch stats"}, &out)
	return out, err
}

func (c *Client) AdminListStores(ctx context.Context) ([]domain.Store, error) {
	var out []domain.Store
	err := c.do(ctx, call{op: "AdminListStores", method: http.MethodGet, path: "/admin/stores", auth: true, fallback: "Failed to fetch stores"}, &out)
	return out, err
}

func (c *Client) AdminCreateStore(ctx context.Context, s domain.Store) (domain.Store, error) {
	var out domain.Store
	err := c.do(ctx, call{op: "AdminCreateStore", method: http.MethodPost, path: "/admin/stores", body: s, auth: true, fallback: "Failed to create store"}, &out)
	return out, err
}

func (c *Client) AdminUpdateStore(ctx context.Context, id int64, s domain.Store) (domain.Store, error) {
	var out domain.Store
	err := c.do(ctx, call{op: "AdminUpdateStore", method: http.MethodPut, path: "/admin/stores/" + itoa(id), body: s, auth: true, fallback: "Failed to update store"}, &out)
	return out, err
}

func (c *Client) AdminDeleteStore(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: "AdminDeleteStore", method: http.MethodDelete, path: "/admin/stores/" + itoa(id), auth: true, fallback: "Failed to delete store"}, nil)
}

func (c *Client) AdminListGifts(ctx context.Context) ([]domain.Gift, error) {
	var out []domain.Gift
	err := c.do(ctx, call{op: "AdminListGifts", method: http.MethodGet, path: "/admin/gifts", auth: true, fallback: "Failed to fetch gifts"}, &out)
	return out, err
}

func (c *Client) AdminCreateGift(ctx context.Context, g domain.Gift) (domain.Gift, error) {
	var out domain.Gift
	err := c.do(ctx, call{op: "AdminCreateGift", method: http.MethodPost, path: "/admin/gifts", body: g, auth: true, fallback: "Failed to create gift"}, &out)
	return out, err
}

func (c *Client) AdminUpdateGift(ctx context.Context, id int64, g domain.Gift) (domain.Gift, error) {
	var out domain.Gift
	err := c.do(ctx, call{op: "AdminUpdateGift", method: http.MethodPut, path: "/admin/gifts/" + itoa(id), body: g, auth: true, fallback: "Failed to update gift"}, &out)
	return out, err
}

func (c *Client) AdminDeleteGift(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: "AdminDeleteGift", method: http.MethodDelete, path: "/admin/gifts/" + itoa(id), auth: true, fallback: "Failed to delete gift"}, nil)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// staticToken is a read-only session used for the upstream logout after
// the real session has been cleared.
type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }
func (staticToken) SetToken(string) error    { return nil }
func (staticToken) ClearToken() error        { return nil }
