package cache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitfare/internal/domain"
)

func TestGzipRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"name":"Market","lat":14.59,"lon":120.98}`), 200)

	compressed, err := gzipCompress(payload)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(payload))

	raw, err := gzipDecompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, payload, raw)
}

func TestGzipDecompressRejectsGarbage(t *testing.T) {
	_, err := gzipDecompress([]byte("not gzip"))
	assert.Error(t, err)
}

func TestKeyFare(t *testing.T) {
	assert.Equal(t, "fare:abc:Depot:Market", KeyFare("abc", "Depot", "Market"))
	assert.NotEqual(t, KeyFare("v1", "A", "B"), KeyFare("v2", "A", "B"))
	assert.NotEqual(t, KeyFare("v1", "A:B", "C"), KeyFare("v1", "A", "B:C"))
	assert.NotEqual(t, KeyFare("v1", "Terminal: North", "Market"), KeyFare("v1", "Terminal", " North:Market"))
	assert.Equal(t, "fare:v1:Terminal%3A+North:Market", KeyFare("v1", "Terminal: North", "Market"))
}

func TestTerminalFares(t *testing.T) {
	cat := &domain.Catalog{
		Version: "v1",
		Routes: []domain.Route{
			{ID: "r1", Start: "Depot", End: "School", Stops: []domain.Stop{
				{Name: "Depot", Lat: 14.50, Lon: 121.00},
				{Name: "Market", Lat: 14.505, Lon: 121.00},
				{Name: "School", Lat: 14.51, Lon: 121.00},
			}},
			{ID: "r2", Start: "Lonely", End: "Lonely", Stops: []domain.Stop{
				{Name: "Lonely", Lat: 14.60, Lon: 121.10},
			}},
		},
	}

	got := TerminalFares(cat)
	require.Len(t, got, 2)

	there := got[KeyFare("v1", "Depot", "School")]
	back := got[KeyFare("v1", "School", "Depot")]
	require.NotNil(t, there)
	require.NotNil(t, back)
	assert.Equal(t, there.Fare, back.Fare)
	assert.Equal(t, "Depot", there.From)
	assert.Equal(t, "School", there.To)
}

func TestKeyFarePattern(t *testing.T) {
	assert.Equal(t, "fare:v1:*", KeyFarePattern("v1"))
}
