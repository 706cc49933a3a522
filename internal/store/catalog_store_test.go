package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitfare/internal/domain"
)

func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		Version: "v1",
		Routes: []domain.Route{
			{ID: "north", Start: "Depot", End: "Market", Stops: []domain.Stop{
				{Name: "Depot", Lat: 10, Lon: 10},
				{Name: "Market", Lat: 10.1, Lon: 10.1},
			}},
			{ID: "east", Start: "Market", End: "Harbour", Stops: []domain.Stop{
				{Name: "Market", Lat: 10.1, Lon: 10.1},
				{Name: "Harbour", Lat: 12, Lon: 12},
			}},
		},
		Transfers: []domain.Transfer{{Name: "Market", Transfer1: "Market", Transfer2: "Plaza"}},
	}
}

func TestCatalogStoreEmpty(t *testing.T) {
	s := NewCatalogStore()

	require.NotNil(t, s.Snapshot())
	assert.True(t, s.Snapshot().Empty())
	assert.False(t, s.GetStats().IsLoaded)
	assert.Empty(t, s.GetStops(nil))
}

func TestCatalogStoreUpdate(t *testing.T) {
	s := NewCatalogStore()
	c := testCatalog()
	s.Update(c)

	assert.Same(t, c, s.Snapshot())

	stats := s.GetStats()
	assert.True(t, stats.IsLoaded)
	assert.Equal(t, 2, stats.RoutesCount)
	assert.Equal(t, 3, stats.StopsCount)
	assert.Equal(t, 1, stats.TransfersCount)
	assert.Equal(t, "v1", stats.Version)

	route, ok := s.GetRouteByID("east")
	require.True(t, ok)
	assert.Equal(t, "Harbour", route.End)

	_, ok = s.GetRouteByID("west")
	assert.False(t, ok)
}

func TestCatalogStoreStops(t *testing.T) {
	s := NewCatalogStore()
	s.Update(testCatalog())

	stops := s.GetStops(nil)
	require.Len(t, stops, 3)
	assert.Equal(t, "Market", stops[1].Name)
	assert.Equal(t, []string{"Depot → Market", "Market → Harbour"}, stops[1].Routes)

	inBox := s.GetStops(&domain.BoundingBox{MinLat: 9, MaxLat: 11, MinLon: 9, MaxLon: 11})
	require.Len(t, inBox, 2)
	assert.Equal(t, "Depot", inBox[0].Name)
}

func TestCatalogStoreCopiesOnRead(t *testing.T) {
	s := NewCatalogStore()
	s.Update(testCatalog())

	routes := s.GetAllRoutes()
	routes[0].Start = "mutated"

	route, _ := s.GetRouteByID("north")
	route.Stops[0].Name = "mutated"

	assert.Equal(t, "Depot", s.Snapshot().Routes[0].Start)
	assert.Equal(t, "Depot", s.Snapshot().Routes[0].Stops[0].Name)
}
