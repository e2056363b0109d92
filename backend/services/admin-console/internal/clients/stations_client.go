package clients

import (
	"context"
	"net/url"

	"evhub/backend/services/admin-console/internal/models"
)

// StationsClient calls the /Station endpoints.
type StationsClient struct {
	base *Client
}

// NewStationsClient returns client.
func NewStationsClient(base *Client) *StationsClient {
	return &StationsClient{base: base}
}

func stationPath(id string) string {
	return "/Station/" + url.PathEscape(id)
}

// List returns every station.
func (c *StationsClient) List(ctx context.Context) ([]models.Station, error) {
	var out []models.Station
	err := c.base.Get(ctx, "/Station", &out)
	return out, err
}

// Get returns one station.
func (c *StationsClient) Get(ctx context.Context, id string) (models.Station, error) {
	var out models.Station
	err := c.base.Get(ctx, stationPath(id), &out)
	return out, err
}

// Create posts a new station record.
func (c *StationsClient) Create(ctx context.Context, record map[string]any) (models.Station, error) {
	var out models.Station
	err := c.base.Post(ctx, "/Station", record, &out)
	return out, err
}

// Update sends the changed fields of a station.
func (c *StationsClient) Update(ctx context.Context, id string, record map[string]any) (models.Station, error) {
	var out models.Station
	err := c.base.Put(ctx, stationPath(id), record, &out)
	return out, err
}

// Delete removes a station.
func (c *StationsClient) Delete(ctx context.Context, id string) error {
	return c.base.Delete(ctx, stationPath(id), nil)
}

// SetActive toggles the active flag through the activate/deactivate endpoints.
func (c *StationsClient) SetActive(ctx context.Context, id string, active bool) (models.Station, error) {
	action := "/deactivate"
	if active {
		action = "/activate"
	}
	var out models.Station
	err := c.base.Patch(ctx, stationPath(id)+action, nil, &out)
	return out, err
}
