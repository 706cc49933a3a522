// Package catalog supplies route and transfer snapshots to the fare and
// transfer core. Sources load from a backing store; providers decide how
// often that happens.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"time"

	"transitfare/internal/domain"
)

// Provider hands out catalog snapshots. Fetch may block on I/O and fail;
// Peek never blocks and returns the last known snapshot, possibly empty.
type Provider interface {
	Fetch(ctx context.Context) (*domain.Catalog, error)
	Peek() *domain.Catalog
}

// Source loads a complete catalog from a backing store.
type Source interface {
	Load(ctx context.Context) (*domain.Catalog, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*domain.Catalog, error)

func (f SourceFunc) Load(ctx context.Context) (*domain.Catalog, error) {
	return f(ctx)
}

// Static serves a fixed snapshot.
type Static struct {
	catalog *domain.Catalog
}

func NewStatic(routes []domain.Route, transfers []domain.Transfer) *Static {
	return &Static{catalog: Seal(&domain.Catalog{Routes: routes, Transfers: transfers})}
}

func (s *Static) Fetch(context.Context) (*domain.Catalog, error) { return s.catalog, nil }
func (s *Static) Peek() *domain.Catalog                          { return s.catalog }

// Seal stamps c with its load time and a content version if missing.
func Seal(c *domain.Catalog) *domain.Catalog {
	if c.LoadedAt.IsZero() {
		c.LoadedAt = time.Now()
	}
	if c.Version == "" {
		c.Version = Fingerprint(c)
	}
	return c
}

// Fingerprint is a short content hash of the routes and transfers.
func Fingerprint(c *domain.Catalog) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, r := range c.Routes {
		_ = enc.Encode(r)
	}
	_ = enc.Encode(c.Transfers)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Coordinate converts an optional decoded coordinate to a float. Missing
// values become NaN so distance computations report them.
func Coordinate(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
