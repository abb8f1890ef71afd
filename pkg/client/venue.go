package client

import (
	"context"
	"net/url"
	"time"
	"venuebook/pkg/model"
)

type VenueClient struct {
	httpClient *HttpClient
}

func NewVenueClient(baseURL string, timeout time.Duration) *VenueClient {
	return &VenueClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *VenueClient) GetByID(ctx context.Context, token, id string) (*model.Venue, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/venues/id/"+url.PathEscape(id), bearer(token))
	return decodeData[*model.Venue](resp, err)
}

func (c *VenueClient) ListActive(ctx context.Context, token string) ([]*model.Venue, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/venues/active", bearer(token))
	return decodeData[[]*model.Venue](resp, err)
}

func (c *VenueClient) SearchByName(ctx context.Context, token, name string) ([]*model.Venue, error) {
	path := "/api/v1/venues/search?" + url.Values{"name": {name}}.Encode()
	resp, err := c.httpClient.GET(ctx, path, bearer(token))
	return decodeData[[]*model.Venue](resp, err)
}
