package fare

import (
	"fmt"
	"math"

	"transitfare/internal/domain"
	"transitfare/internal/geo"
)

// Estimate finds the first route in catalog order that contains both start
// and end and prices the distance between them with DefaultTable.
func Estimate(start, end string, routes []domain.Route) (*domain.FareResult, error) {
	return DefaultTable.Estimate(start, end, routes)
}

// Estimate is Estimate priced with t.
func (t Table) Estimate(start, end string, routes []domain.Route) (*domain.FareResult, error) {
	for _, route := range routes {
		i, j := route.IndexOf(start), route.IndexOf(end)
		if i < 0 || j < 0 {
			continue
		}

		from, to := min(i, j), max(i, j)
		distance := Distance(route, from, to)
		if math.IsNaN(distance) || math.IsInf(distance, 0) {
			return nil, fmt.Errorf("route %q between %q and %q: %w",
				route.Label(), route.Stops[from].Name, route.Stops[to].Name, domain.ErrComputation)
		}

		return &domain.FareResult{
			Route:         route.Label(),
			From:          route.Stops[from].Name,
			To:            route.Stops[to].Name,
			TotalDistance: round2(distance),
			Fare:          t.Fare(distance),
		}, nil
	}

	return nil, fmt.Errorf("%q to %q: %w", start, end, domain.ErrNotFound)
}

// Distance sums the segment lengths of route between stop indices i and j
// in either order. Indices must be valid for route.Stops.
func Distance(route domain.Route, i, j int) float64 {
	from, to := min(i, j), max(i, j)
	points := make([]domain.Point, 0, to-from+1)
	for _, s := range route.Stops[from : to+1] {
		points = append(points, s.Point())
	}
	return geo.PathLength(points)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
