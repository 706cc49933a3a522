package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotFound means no route in the catalog serves both stops.
	ErrNotFound = errors.New("stops not found in any route")
	// ErrDataUnavailable means the catalog could not be loaded or parsed.
	ErrDataUnavailable = errors.New("catalog data unavailable")
	// ErrComputation means stop coordinates produced a non-finite distance.
	ErrComputation = errors.New("distance computation failed")
)

// Stop is a named, geo-located point on a route. Names are unique within
// a route's stop list but not across routes.
type Stop struct {
	Name string  `json:"name" yaml:"name"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
}

func (s Stop) Point() Point {
	return Point{Lat: s.Lat, Lon: s.Lon}
}

// stopJSON is the wire form of Stop. A missing coordinate is null.
type stopJSON struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

// MarshalJSON writes non-finite coordinates as null.
func (s Stop) MarshalJSON() ([]byte, error) {
	return json.Marshal(stopJSON{Name: s.Name, Lat: finiteOrNil(s.Lat), Lon: finiteOrNil(s.Lon)})
}

// UnmarshalJSON reads null or absent coordinates as NaN.
func (s *Stop) UnmarshalJSON(data []byte) error {
	var aux stopJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Name = aux.Name
	s.Lat = valueOrNaN(aux.Lat)
	s.Lon = valueOrNaN(aux.Lon)
	return nil
}

func finiteOrNil(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// Route is an ordered sequence of stops in physical travel order.
type Route struct {
	ID      string `json:"id,omitempty" yaml:"id"`
	BusName string `json:"busName,omitempty" yaml:"busName"`
	Start   string `json:"start" yaml:"start"`
	End     string `json:"end" yaml:"end"`
	Stops   []Stop `json:"stops" yaml:"stops"`
}

// Label is the display name of the route, e.g. "Terminal → Harbour".
func (r Route) Label() string {
	return fmt.Sprintf("%s → %s", r.Start, r.End)
}

// IndexOf returns the index of the first stop named name, or -1.
func (r Route) IndexOf(name string) int {
	for i, s := range r.Stops {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Transfer is a symmetric connection between two stops where a rider
// changes vehicles.
type Transfer struct {
	ID        string `json:"id,omitempty" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Transfer1 string `json:"transfer1" yaml:"transfer1"`
	Transfer2 string `json:"transfer2" yaml:"transfer2"`
}

// FareResult is the outcome of a single-route fare estimate.
type FareResult struct {
	Route         string  `json:"route"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	TotalDistance float64 `json:"totalDistance"`
	Fare          int     `json:"fare"`
}
