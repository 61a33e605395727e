package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB at the given URI and verifies the
// connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Collections bundles one configured store per entity. Instances are built
// once at startup and handed to the services that need them.
type Collections struct {
	Customers CustomerCollection
	Drivers   DriverCollection
	Vehicles  VehicleCollection
	Positions PositionCollection
	Trips     TripCollection
}

// NewCollections wires the Mongo-backed store implementations for a database.
func NewCollections(database *mongo.Database) *Collections {
	return &Collections{
		Customers: &MongoCustomerCollection{Collection: database.Collection("customers")},
		Drivers:   &MongoDriverCollection{Collection: database.Collection("drivers")},
		Vehicles:  &MongoVehicleCollection{Collection: database.Collection("vehicles")},
		Positions: &MongoPositionCollection{Collection: database.Collection("positions")},
		Trips:     &MongoTripCollection{Collection: database.Collection("trips")},
	}
}
