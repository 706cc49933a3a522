package domain

import (
	"encoding/json"
	"time"
)

// Catalog is an immutable snapshot of the network reference data. A
// refresh publishes a new Catalog instead of mutating the current one.
type Catalog struct {
	Routes    []Route    `json:"routes"`
	Transfers []Transfer `json:"transfers"`
	Version   string     `json:"version"`
	LoadedAt  time.Time  `json:"loadedAt"`
}

// Empty reports whether the snapshot carries no reference data.
func (c *Catalog) Empty() bool {
	return c == nil || (len(c.Routes) == 0 && len(c.Transfers) == 0)
}

// StopSummary is a stop name together with the routes serving it.
type StopSummary struct {
	Name   string   `json:"name"`
	Lat    float64  `json:"lat"`
	Lon    float64  `json:"lon"`
	Routes []string `json:"routes"`
}

// MarshalJSON writes non-finite coordinates as null.
func (s StopSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string   `json:"name"`
		Lat    *float64 `json:"lat"`
		Lon    *float64 `json:"lon"`
		Routes []string `json:"routes"`
	}{s.Name, finiteOrNil(s.Lat), finiteOrNil(s.Lon), s.Routes})
}
