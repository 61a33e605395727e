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
)

// MongoDriverCollection implements DriverCollection for MongoDB.
type MongoDriverCollection struct {
	Collection *mongo.Collection
}

// InsertDriver inserts a driver record.
func (c *MongoDriverCollection) InsertDriver(ctx context.Context, driver models.Driver) (*models.Driver, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = driver.CreatedAt

	result, err := c.Collection.InsertOne(ctx, driver)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		driver.ID = oid
	}
	return &driver, nil
}

// FindDriverByID finds a driver by its ID. A missing driver yields (nil, nil).
func (c *MongoDriverCollection) FindDriverByID(ctx context.Context, id string) (*models.Driver, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var driver models.Driver
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&driver)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// FindDriversByCustomerID returns all drivers employed by a customer.
func (c *MongoDriverCollection) FindDriversByCustomerID(ctx context.Context, customerID string) ([]models.Driver, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"customer_id": customerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drivers []models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// UpdateDriver updates a driver by its ID and returns the updated record.
func (c *MongoDriverCollection) UpdateDriver(ctx context.Context, id string, driver models.Driver) (*models.Driver, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	set := bson.M{
		"first_name": driver.FirstName,
		"last_name":  driver.LastName,
		"updated_at": time.Now(),
	}
	if driver.VehicleID != nil {
		set["vehicle_id"] = *driver.VehicleID
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, nil
	}
	return c.FindDriverByID(ctx, id)
}

// DeleteDriver deletes a driver by its ID.
func (c *MongoDriverCollection) DeleteDriver(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("driver not found")
	}
	return nil
}
