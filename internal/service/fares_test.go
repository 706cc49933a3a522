package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitfare/internal/catalog"
	"transitfare/internal/domain"
	"transitfare/internal/itinerary"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	testRoutes = []domain.Route{{
		Start: "Depot",
		End:   "Market",
		Stops: []domain.Stop{
			{Name: "Depot", Lat: 0, Lon: 0},
			{Name: "School", Lat: 0, Lon: 0.01},
			{Name: "Market", Lat: 0, Lon: 0.02},
		},
	}}
	testTransfers = []domain.Transfer{{Name: "Market Plaza", Transfer1: "Market", Transfer2: "Plaza"}}
)

type failingProvider struct {
	stale *domain.Catalog
}

func (p failingProvider) Fetch(context.Context) (*domain.Catalog, error) {
	return nil, fmt.Errorf("%w: mongo down", domain.ErrDataUnavailable)
}

func (p failingProvider) Peek() *domain.Catalog {
	if p.stale == nil {
		return &domain.Catalog{}
	}
	return p.stale
}

type mapCache struct {
	data map[string][]byte
	gets int
}

func (m *mapCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	m.gets++
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mapCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	m.data[key] = raw
	return err
}

func TestEstimate(t *testing.T) {
	f := NewFares(catalog.NewStatic(testRoutes, testTransfers), discardLogger())

	res, err := f.Estimate(context.Background(), "Depot", "Market")
	require.NoError(t, err)
	assert.Equal(t, 20, res.Fare)

	_, err = f.Estimate(context.Background(), "Depot", "Nowhere")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEstimateUsesResultCache(t *testing.T) {
	rc := &mapCache{data: map[string][]byte{}}
	f := NewFares(catalog.NewStatic(testRoutes, nil), discardLogger()).WithResultCache(rc, time.Minute)

	first, err := f.Estimate(context.Background(), "Depot", "School")
	require.NoError(t, err)
	require.Len(t, rc.data, 1)

	second, err := f.Estimate(context.Background(), "Depot", "School")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, rc.gets)
}

func TestEstimateResultCacheStopNamesWithColons(t *testing.T) {
	routes := []domain.Route{{
		Start: "A:B",
		End:   "C",
		Stops: []domain.Stop{
			{Name: "A:B", Lat: 0, Lon: 0},
			{Name: "C", Lat: 0, Lon: 0.005},
		},
	}, {
		Start: "A",
		End:   "B:C",
		Stops: []domain.Stop{
			{Name: "A", Lat: 1, Lon: 1},
			{Name: "B:C", Lat: 1, Lon: 1.1},
		},
	}}
	rc := &mapCache{data: map[string][]byte{}}
	f := NewFares(catalog.NewStatic(routes, nil), discardLogger()).WithResultCache(rc, time.Minute)

	short, err := f.Estimate(context.Background(), "A:B", "C")
	require.NoError(t, err)
	long, err := f.Estimate(context.Background(), "A", "B:C")
	require.NoError(t, err)
	require.Len(t, rc.data, 2)

	assert.Equal(t, "A:B → C", short.Route)
	assert.Equal(t, 5, short.Fare)
	assert.Equal(t, "A → B:C", long.Route)
	assert.Equal(t, "B:C", long.To)
	assert.Equal(t, 30, long.Fare)

	_, err = f.Estimate(context.Background(), "A", "B:C:D")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.Estimate(context.Background(), "A:B:C", "D")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogUnavailable(t *testing.T) {
	f := NewFares(failingProvider{}, discardLogger())

	_, err := f.Estimate(context.Background(), "Depot", "Market")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	_, err = f.DetectTransfer(context.Background(), []string{"Market", "Plaza"})
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestCatalogStaleFallback(t *testing.T) {
	stale := &domain.Catalog{Routes: testRoutes, Transfers: testTransfers, Version: "old"}
	f := NewFares(failingProvider{stale: stale}, discardLogger())

	res, err := f.Estimate(context.Background(), "Market", "Depot")
	require.NoError(t, err)
	assert.Equal(t, "Depot", res.From)

	notice, err := f.DetectTransfer(context.Background(), []string{"School", "Market", "Plaza"})
	require.NoError(t, err)
	assert.True(t, notice.Transfer)
	assert.Equal(t, "Transfer from Market to Plaza", notice.Message)
}

func TestDetectTransferNone(t *testing.T) {
	f := NewFares(catalog.NewStatic(testRoutes, testTransfers), discardLogger())

	notice, err := f.DetectTransfer(context.Background(), []string{"Market", "School", "Plaza"})
	require.NoError(t, err)
	assert.False(t, notice.Transfer)
	assert.Empty(t, notice.Message)
}

func TestQuote(t *testing.T) {
	f := NewFares(catalog.NewStatic(testRoutes, testTransfers), discardLogger())

	q, err := f.Quote(context.Background(), []string{"Depot", "School"})
	require.NoError(t, err)
	assert.Equal(t, 20, q.TotalFare)

	_, err = f.Quote(context.Background(), []string{"Depot"})
	assert.True(t, errors.Is(err, itinerary.ErrTooShort))
}
