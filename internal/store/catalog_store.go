package store

import (
	"slices"
	"sync"
	"time"

	"transitfare/internal/domain"
)

// CatalogStore holds the currently published catalog snapshot.
type CatalogStore struct {
	mu         sync.RWMutex
	catalog    *domain.Catalog
	routesByID map[string]int
	stops      []domain.StopSummary

	lastUpdate time.Time
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		catalog:    &domain.Catalog{},
		routesByID: make(map[string]int),
	}
}

// Update publishes c. c must not be modified afterwards.
func (s *CatalogStore) Update(c *domain.Catalog) {
	routesByID := make(map[string]int, len(c.Routes))
	for i, route := range c.Routes {
		if route.ID == "" {
			continue
		}
		if _, dup := routesByID[route.ID]; !dup {
			routesByID[route.ID] = i
		}
	}
	stops := summarizeStops(c.Routes)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog = c
	s.routesByID = routesByID
	s.stops = stops
	s.lastUpdate = time.Now()
}

// Snapshot returns the published catalog. It is never nil.
func (s *CatalogStore) Snapshot() *domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

func (s *CatalogStore) GetAllRoutes() []domain.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.catalog.Routes)
}

func (s *CatalogStore) GetRouteByID(id string) (domain.Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.routesByID[id]
	if !ok {
		return domain.Route{}, false
	}
	route := s.catalog.Routes[i]
	route.Stops = slices.Clone(route.Stops)
	return route, true
}

func (s *CatalogStore) GetTransfers() []domain.Transfer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.catalog.Transfers)
}

// GetStops lists distinct stop names, optionally limited to bbox.
func (s *CatalogStore) GetStops(bbox *domain.BoundingBox) []domain.StopSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StopSummary, 0, len(s.stops))
	for _, stop := range s.stops {
		if bbox != nil && !bbox.Contains(stop.Lat, stop.Lon) {
			continue
		}
		stop.Routes = slices.Clone(stop.Routes)
		result = append(result, stop)
	}
	return result
}

type CatalogStats struct {
	RoutesCount    int       `json:"routes_count"`
	StopsCount     int       `json:"stops_count"`
	TransfersCount int       `json:"transfers_count"`
	Version        string    `json:"version"`
	LastUpdate     time.Time `json:"last_update"`
	IsLoaded       bool      `json:"is_loaded"`
}

func (s *CatalogStore) GetStats() CatalogStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return CatalogStats{
		RoutesCount:    len(s.catalog.Routes),
		StopsCount:     len(s.stops),
		TransfersCount: len(s.catalog.Transfers),
		Version:        s.catalog.Version,
		LastUpdate:     s.lastUpdate,
		IsLoaded:       !s.lastUpdate.IsZero(),
	}
}

// summarizeStops keeps the coordinates of the first occurrence of each name.
func summarizeStops(routes []domain.Route) []domain.StopSummary {
	index := make(map[string]int)
	var result []domain.StopSummary

	for _, route := range routes {
		label := route.Label()
		for _, stop := range route.Stops {
			i, ok := index[stop.Name]
			if !ok {
				index[stop.Name] = len(result)
				result = append(result, domain.StopSummary{
					Name:   stop.Name,
					Lat:    stop.Lat,
					Lon:    stop.Lon,
					Routes: []string{label},
				})
				continue
			}
			if !slices.Contains(result[i].Routes, label) {
				result[i].Routes = append(result[i].Routes, label)
			}
		}
	}
	return result
}
