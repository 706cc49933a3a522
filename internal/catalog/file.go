package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"transitfare/internal/domain"
)

// FileSource reads a catalog from a YAML or JSON document:
//
//	routes:
//	  - id: north
//	    start: Depot
//	    end: Market
//	    stops:
//	      - {name: Depot, lat: 14.59, lon: 120.98}
//	transfers:
//	  - {name: Market Plaza, transfer1: Market, transfer2: Plaza}
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

type fileCatalog struct {
	Routes    []fileRoute       `yaml:"routes"`
	Transfers []domain.Transfer `yaml:"transfers"`
}

type fileRoute struct {
	ID      string     `yaml:"id"`
	BusName string     `yaml:"busName"`
	Start   string     `yaml:"start"`
	End     string     `yaml:"end"`
	Stops   []fileStop `yaml:"stops"`
}

type fileStop struct {
	Name string   `yaml:"name"`
	Lat  *float64 `yaml:"lat"`
	Lon  *float64 `yaml:"lon"`
}

func (s *FileSource) Load(ctx context.Context) (*domain.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseDocument(data)
}

// ParseDocument decodes a YAML or JSON catalog document.
func ParseDocument(data []byte) (*domain.Catalog, error) {
	var doc fileCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %w", domain.ErrDataUnavailable, err)
	}

	cat := &domain.Catalog{
		Routes:    make([]domain.Route, 0, len(doc.Routes)),
		Transfers: doc.Transfers,
	}
	for _, r := range doc.Routes {
		route := domain.Route{
			ID:      r.ID,
			BusName: r.BusName,
			Start:   r.Start,
			End:     r.End,
			Stops:   make([]domain.Stop, 0, len(r.Stops)),
		}
		for _, st := range r.Stops {
			route.Stops = append(route.Stops, domain.Stop{
				Name: st.Name,
				Lat:  Coordinate(st.Lat),
				Lon:  Coordinate(st.Lon),
			})
		}
		cat.Routes = append(cat.Routes, route)
	}
	if cat.Transfers == nil {
		cat.Transfers = []domain.Transfer{}
	}
	return cat, nil
}
