// Package catalogapi fetches the route and transfer catalog from the
// dashboard's REST API.
package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"transitfare/internal/catalog"
	"transitfare/internal/domain"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type apiRoute struct {
	ID      string    `json:"_id"`
	BusName string    `json:"busName"`
	Start   string    `json:"start"`
	End     string    `json:"end"`
	Stops   []apiStop `json:"stops"`
}

type apiStop struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

type apiTransfer struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Transfer1 string `json:"transfer1"`
	Transfer2 string `json:"transfer2"`
}

// Load implements catalog.Source.
func (c *Client) Load(ctx context.Context) (*domain.Catalog, error) {
	var routes []apiRoute
	if err := c.get(ctx, "/routes", &routes); err != nil {
		return nil, fmt.Errorf("%w: routes: %w", domain.ErrDataUnavailable, err)
	}

	var transfers []apiTransfer
	if err := c.get(ctx, "/transfers", &transfers); err != nil {
		return nil, fmt.Errorf("%w: transfers: %w", domain.ErrDataUnavailable, err)
	}

	return c.toDomain(routes, transfers), nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) toDomain(routes []apiRoute, transfers []apiTransfer) *domain.Catalog {
	cat := &domain.Catalog{
		Routes:    make([]domain.Route, 0, len(routes)),
		Transfers: make([]domain.Transfer, 0, len(transfers)),
	}

	for _, ar := range routes {
		route := domain.Route{
			ID:      ar.ID,
			BusName: ar.BusName,
			Start:   ar.Start,
			End:     ar.End,
			Stops:   make([]domain.Stop, 0, len(ar.Stops)),
		}
		for _, as := range ar.Stops {
			route.Stops = append(route.Stops, domain.Stop{
				Name: as.Name,
				Lat:  catalog.Coordinate(as.Lat),
				Lon:  catalog.Coordinate(as.Lon),
			})
		}
		cat.Routes = append(cat.Routes, route)
	}

	for _, at := range transfers {
		cat.Transfers = append(cat.Transfers, domain.Transfer{
			ID:        at.ID,
			Name:      at.Name,
			Transfer1: at.Transfer1,
			Transfer2: at.Transfer2,
		})
	}

	return cat
}
