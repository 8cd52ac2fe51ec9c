package jellyfin

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/llehouerou/jellywaves/internal/errmsg"
	"github.com/llehouerou/jellywaves/internal/media"
)

// GetItem returns one catalog item with the user's resume data.
func (c *Client) GetItem(ctx context.Context, id string) (media.Item, error) {
	dto, err := c.getItemDTO(ctx, id, "")
	if err != nil {
		return media.Item{}, err
	}
	return dto.toItem(), nil
}

func (c *Client) getItemDTO(ctx context.Context, id, fields string) (*itemDTO, error) {
	userID, err := c.requireUser()
	if err != nil {
		return nil, err
	}
	q := url.Values{"userId": {userID}}
	if fields != "" {
		q.Set("fields", fields)
	}
	var dto itemDTO
	if err := c.do(ctx, http.MethodGet, "/Items/"+url.PathEscape(id), q, nil, &dto); err != nil {
		if IsNotFound(err) {
			return nil, errmsg.NewMediaError(errmsg.KindItemNotFound, err).WithItem(id)
		}
		return nil, err
	}
	return &dto, nil
}

// GetItems returns the items with the given ids, in the order given.
// Ids the server no longer knows are skipped.
func (c *Client) GetItems(ctx context.Context, ids []string) ([]media.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	userID, err := c.requireUser()
	if err != nil {
		return nil, err
	}
	q := url.Values{
		"userId": {userID},
		"ids":    {strings.Join(ids, ",")},
	}
	var resp itemsResponse
	if err := c.do(ctx, http.MethodGet, "/Items", q, nil, &resp); err != nil {
		return nil, err
	}

	byID := lo.KeyBy(resp.Items, func(d itemDTO) string { return d.ID })
	return lo.FilterMap(ids, func(id string, _ int) (media.Item, bool) {
		d, ok := byID[id]
		if !ok {
			return media.Item{}, false
		}
		return d.toItem(), true
	}), nil
}

// ImageURL returns the primary image address for an item, or "" when the
// item has no image tag.
func (c *Client) ImageURL(item media.Item, maxWidth int) string {
	if item.ImageTag == "" {
		return ""
	}
	q := url.Values{"tag": {item.ImageTag}}
	if maxWidth > 0 {
		q.Set("maxWidth", itoa(maxWidth))
	}
	return c.baseURL + "/Items/" + url.PathEscape(item.ID) + "/Images/Primary?" + q.Encode()
}

// Image downloads the primary image of an item.
func (c *Client) Image(ctx context.Context, item media.Item, maxWidth int) ([]byte, error) {
	q := url.Values{}
	if item.ImageTag != "" {
		q.Set("tag", item.ImageTag)
	}
	if maxWidth > 0 {
		q.Set("maxWidth", itoa(maxWidth))
	}
	return c.fetch(ctx, "/Items/"+url.PathEscape(item.ID)+"/Images/Primary", q)
}
