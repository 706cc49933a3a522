package itinerary

import (
	"errors"
	"fmt"
	"math"

	"transitfare/internal/domain"
	"transitfare/internal/fare"
	"transitfare/internal/transfer"
)

// ErrTooShort is returned for itineraries with fewer than two stops.
var ErrTooShort = errors.New("itinerary needs at least two stops")

type Quote struct {
	Legs          []domain.FareResult `json:"legs"`
	Transfer      *domain.Transfer    `json:"transfer,omitempty"`
	Notice        string              `json:"notice,omitempty"`
	TotalDistance float64             `json:"totalDistance"`
	TotalFare     int                 `json:"totalFare"`
}

// Build prices an itinerary. When a transfer is detected the itinerary is
// split between the two transfer stops and each side is priced as its own
// single-route leg; otherwise the first and last stops form one leg.
//
// A side holding only a transfer stop is not priced. When the itinerary is
// nothing but the transfer pair, the pair is priced as one leg if a route
// serves both stops. Otherwise the quote has no legs and a zero fare: the
// rider only walks between the two stops.
func Build(itinerary []string, routes []domain.Route, transfers []domain.Transfer) (*Quote, error) {
	if len(itinerary) < 2 {
		return nil, ErrTooShort
	}

	q := &Quote{Legs: []domain.FareResult{}}
	segments := [][2]string{{itinerary[0], itinerary[len(itinerary)-1]}}

	if t, idx, ok := transfer.Find(itinerary, transfers); ok {
		q.Transfer = &t
		q.Notice = transfer.Notice(t)
		segments = segments[:0]
		if idx > 0 {
			segments = append(segments, [2]string{itinerary[0], itinerary[idx]})
		}
		if idx+1 < len(itinerary)-1 {
			segments = append(segments, [2]string{itinerary[idx+1], itinerary[len(itinerary)-1]})
		}
	}

	if len(segments) == 0 {
		res, err := fare.Estimate(itinerary[0], itinerary[len(itinerary)-1], routes)
		switch {
		case err == nil:
			q.Legs = append(q.Legs, *res)
			q.TotalDistance, q.TotalFare = res.TotalDistance, res.Fare
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("transfer %s to %s: %w", itinerary[0], itinerary[len(itinerary)-1], err)
		}
		return q, nil
	}

	for _, seg := range segments {
		res, err := fare.Estimate(seg[0], seg[1], routes)
		if err != nil {
			return nil, fmt.Errorf("leg %s to %s: %w", seg[0], seg[1], err)
		}
		q.Legs = append(q.Legs, *res)
		q.TotalDistance += res.TotalDistance
		q.TotalFare += res.Fare
	}
	q.TotalDistance = math.Round(q.TotalDistance*100) / 100

	return q, nil
}
