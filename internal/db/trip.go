package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/fleet-track/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTripCollection implements TripCollection for MongoDB.
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// InsertTrip inserts a trip record.
func (c *MongoTripCollection) InsertTrip(ctx context.Context, trip models.Trip) (*models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt

	result, err := c.Collection.InsertOne(ctx, trip)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		trip.ID = oid
	}
	return &trip, nil
}

// FindTripByID finds a trip by its ID. A missing trip yields (nil, nil).
func (c *MongoTripCollection) FindTripByID(ctx context.Context, id string) (*models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var trip models.Trip
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&trip)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// FindActiveTripByVehicleID returns the newest trip of a vehicle whose end
// time is unset, or (nil, nil) when the vehicle has no active trip.
func (c *MongoTripCollection) FindActiveTripByVehicleID(ctx context.Context, vehicleID string) (*models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	filter := bson.M{"vehicle_id": vehicleID, "end_time": bson.M{"$exists": false}}
	opts := options.FindOne().SetSort(bson.D{{Key: "start_time", Value: -1}})

	var trip models.Trip
	err := c.Collection.FindOne(ctx, filter, opts).Decode(&trip)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// FindTripsByVehicleID returns all trips of a vehicle, newest first.
func (c *MongoTripCollection) FindTripsByVehicleID(ctx context.Context, vehicleID string) ([]models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// SetTripEndTime persists the end time on a trip and returns the updated
// record, or (nil, nil) when the trip does not exist.
func (c *MongoTripCollection) SetTripEndTime(ctx context.Context, id string, endTime time.Time) (*models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	update := bson.M{"$set": bson.M{"end_time": endTime, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var trip models.Trip
	err = c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&trip)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// UpdateTrip replaces the mutable fields of a trip and returns the updated
// record, or (nil, nil) when the trip does not exist.
func (c *MongoTripCollection) UpdateTrip(ctx context.Context, id string, trip models.Trip) (*models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{
		"vehicle_id": trip.VehicleID,
		"driver_id":  trip.DriverID,
		"start_time": trip.StartTime,
		"distance":   trip.Distance,
		"updated_at": time.Now(),
	}
	if trip.EndTime != nil {
		set["end_time"] = *trip.EndTime
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Trip
	err = c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTrip deletes a trip by its ID.
func (c *MongoTripCollection) DeleteTrip(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

// DeleteTripsByVehicleID removes all trips of a vehicle. Used only as a
// cascade when the owning vehicle is deleted.
func (c *MongoTripCollection) DeleteTripsByVehicleID(ctx context.Context, vehicleID string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{"vehicle_id": vehicleID})
	return err
}
