package client

import (
	"context"
	"net/url"
	"time"
	"venuebook/pkg/model"
)

type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseURL string, timeout time.Duration) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *ReservationClient) Create(ctx context.Context, token string, req *model.ReservationRequest) (*model.ReservationReceipt, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/reservations", req, bearer(token))
	return decodeData[*model.ReservationReceipt](resp, err)
}

func (c *ReservationClient) Verify(ctx context.Context, token, id, code string) (*model.Reservation, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(id) + "/verify"
	resp, err := c.httpClient.POST(ctx, path, map[string]string{"code": code}, bearer(token))
	return decodeData[*model.Reservation](resp, err)
}

func (c *ReservationClient) Cancel(ctx context.Context, token, id string) (*model.Reservation, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(id) + "/cancel"
	resp, err := c.httpClient.POST(ctx, path, struct{}{}, bearer(token))
	return decodeData[*model.Reservation](resp, err)
}

func (c *ReservationClient) Mine(ctx context.Context, token string) ([]*model.Reservation, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/reservations/mine", bearer(token))
	return decodeData[[]*model.Reservation](resp, err)
}

func (c *ReservationClient) Slots(ctx context.Context, token, venueID, date string) ([]model.SlotAvailability, error) {
	path := "/api/v1/venues/" + url.PathEscape(venueID) + "/slots?" + url.Values{"date": {date}}.Encode()
	resp, err := c.httpClient.GET(ctx, path, bearer(token))
	return decodeData[[]model.SlotAvailability](resp, err)
}

func (c *ReservationClient) Suggestions(ctx context.Context, token, venueID, date, start, end string) ([]model.Suggestion, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("start", start)
	q.Set("end", end)
	path := "/api/v1/venues/" + url.PathEscape(venueID) + "/suggestions?" + q.Encode()
	resp, err := c.httpClient.GET(ctx, path, bearer(token))
	return decodeData[[]model.Suggestion](resp, err)
}
