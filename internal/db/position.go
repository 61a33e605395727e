package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/fleet-track/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPositionCollection implements PositionCollection for MongoDB.
type MongoPositionCollection struct {
	Collection *mongo.Collection
}

// InsertPosition appends a position sample. The timestamp defaults to the
// insertion time when the input does not carry one.
func (c *MongoPositionCollection) InsertPosition(ctx context.Context, input models.PositionInput) (*models.Position, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	ts := input.Timestamp
	if ts == nil {
		now := time.Now()
		ts = &now
	}

	position := models.Position{
		VehicleID: input.VehicleID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Speed:     input.Speed,
		Ignition:  input.Ignition,
		Timestamp: ts,
	}

	result, err := c.Collection.InsertOne(ctx, position)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		position.ID = oid
	}
	return &position, nil
}

// FindPositionsByVehicleID returns every stored sample for a vehicle, in no
// particular order.
func (c *MongoPositionCollection) FindPositionsByVehicleID(ctx context.Context, vehicleID string) ([]models.Position, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var positions []models.Position
	if err := cursor.All(ctx, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// FindRecentPositionsByVehicleID returns up to limit samples for a vehicle,
// newest first.
func (c *MongoPositionCollection) FindRecentPositionsByVehicleID(ctx context.Context, vehicleID string, limit int64) ([]models.Position, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var positions []models.Position
	if err := cursor.All(ctx, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// DeletePositionsByVehicleID removes all samples of a vehicle. Used only as a
// cascade when the owning vehicle is deleted.
func (c *MongoPositionCollection) DeletePositionsByVehicleID(ctx context.Context, vehicleID string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{"vehicle_id": vehicleID})
	return err
}
