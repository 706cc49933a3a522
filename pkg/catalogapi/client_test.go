package catalogapi

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitfare/internal/domain"
)

func newAPI(t *testing.T, routes, transfers string, transferStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/routes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(routes))
	})
	mux.HandleFunc("GET /api/transfers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(transferStatus)
		w.Write([]byte(transfers))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientLoad(t *testing.T) {
	srv := newAPI(t,
		`[{"_id":"r1","start":"Depot","end":"Market","stops":[{"name":"Depot","lat":0,"lon":0},{"name":"Market"}]}]`,
		`[{"_id":"t1","name":"Market Plaza","transfer1":"Market","transfer2":"Plaza"}]`,
		http.StatusOK,
	)

	cat, err := New(srv.URL + "/api/").Load(context.Background())
	require.NoError(t, err)

	require.Len(t, cat.Routes, 1)
	assert.Equal(t, "r1", cat.Routes[0].ID)
	assert.Equal(t, 0.0, cat.Routes[0].Stops[0].Lat)
	assert.True(t, math.IsNaN(cat.Routes[0].Stops[1].Lon))

	require.Len(t, cat.Transfers, 1)
	assert.Equal(t, "t1", cat.Transfers[0].ID)
}

func TestClientLoadFailure(t *testing.T) {
	srv := newAPI(t, `[]`, `oops`, http.StatusBadGateway)

	_, err := New(srv.URL + "/api").Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.ErrorContains(t, err, "unexpected status code: 502")
}
