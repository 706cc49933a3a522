// Package docstore loads the catalog from the MongoDB collections written
// by the admin dashboard.
package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"transitfare/internal/catalog"
	"transitfare/internal/domain"
)

type Options struct {
	URI                 string
	Database            string
	RoutesCollection    string
	TransfersCollection string
	Timeout             time.Duration
}

type routeDocument struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	BusName string             `bson:"busName,omitempty"`
	Start   string             `bson:"start"`
	End     string             `bson:"end"`
	Stops   []stopDocument     `bson:"stops"`
}

type stopDocument struct {
	Name string   `bson:"name"`
	Lat  *float64 `bson:"lat"`
	Lon  *float64 `bson:"lon"`
}

type transferDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Transfer1 string             `bson:"transfer1"`
	Transfer2 string             `bson:"transfer2"`
}

// MongoSource reads routes and transfers in insertion order, which is the
// catalog order the fare and transfer scans depend on.
type MongoSource struct {
	client    *mongo.Client
	routes    *mongo.Collection
	transfers *mongo.Collection
	timeout   time.Duration
	logger    *slog.Logger
}

func Connect(ctx context.Context, opts Options, logger *slog.Logger) (*MongoSource, error) {
	connectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(opts.Database)
	return &MongoSource{
		client:    client,
		routes:    db.Collection(opts.RoutesCollection),
		transfers: db.Collection(opts.TransfersCollection),
		timeout:   opts.Timeout,
		logger:    logger.With("component", "mongo_source"),
	}, nil
}

func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoSource) Load(ctx context.Context) (*domain.Catalog, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var routes []routeDocument
	if err := findAll(ctx, s.routes, &routes); err != nil {
		return nil, fmt.Errorf("%w: routes: %w", domain.ErrDataUnavailable, err)
	}

	var transfers []transferDocument
	if err := findAll(ctx, s.transfers, &transfers); err != nil {
		return nil, fmt.Errorf("%w: transfers: %w", domain.ErrDataUnavailable, err)
	}

	s.logger.Debug("loaded catalog documents",
		"routes", len(routes),
		"transfers", len(transfers),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return toCatalog(routes, transfers), nil
}

func findAll(ctx context.Context, coll *mongo.Collection, dest interface{}) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, dest)
}

func toCatalog(routes []routeDocument, transfers []transferDocument) *domain.Catalog {
	cat := &domain.Catalog{
		Routes:    make([]domain.Route, 0, len(routes)),
		Transfers: make([]domain.Transfer, 0, len(transfers)),
	}

	for _, doc := range routes {
		route := domain.Route{
			BusName: doc.BusName,
			Start:   doc.Start,
			End:     doc.End,
			Stops:   make([]domain.Stop, 0, len(doc.Stops)),
		}
		if !doc.ID.IsZero() {
			route.ID = doc.ID.Hex()
		}
		for _, st := range doc.Stops {
			route.Stops = append(route.Stops, domain.Stop{
				Name: st.Name,
				Lat:  catalog.Coordinate(st.Lat),
				Lon:  catalog.Coordinate(st.Lon),
			})
		}
		cat.Routes = append(cat.Routes, route)
	}

	for _, doc := range transfers {
		t := domain.Transfer{
			Name:      doc.Name,
			Transfer1: doc.Transfer1,
			Transfer2: doc.Transfer2,
		}
		if !doc.ID.IsZero() {
			t.ID = doc.ID.Hex()
		}
		cat.Transfers = append(cat.Transfers, t)
	}

	return cat
}
