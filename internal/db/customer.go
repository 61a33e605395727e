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

// MongoCustomerCollection implements CustomerCollection for MongoDB.
type MongoCustomerCollection struct {
	Collection *mongo.Collection
}

// InsertCustomer inserts a new customer.
func (c *MongoCustomerCollection) InsertCustomer(ctx context.Context, customer models.Customer) (*models.Customer, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = customer.CreatedAt

	result, err := c.Collection.InsertOne(ctx, customer)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		customer.ID = oid
	}
	return &customer, nil
}

// FindCustomerByID finds a customer by ID. A missing customer yields (nil, nil).
func (c *MongoCustomerCollection) FindCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var customer models.Customer
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindCustomerByEmail finds a customer by email. A missing customer yields (nil, nil).
func (c *MongoCustomerCollection) FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var customer models.Customer
	err := c.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer updates a customer by ID and returns the updated record.
func (c *MongoCustomerCollection) UpdateCustomer(ctx context.Context, id string, customer models.Customer) (*models.Customer, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	set := bson.M{
		"name":       customer.Name,
		"email":      customer.Email,
		"updated_at": time.Now(),
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, nil
	}
	return c.FindCustomerByID(ctx, id)
}

// DeleteCustomer deletes a customer by ID.
func (c *MongoCustomerCollection) DeleteCustomer(ctx context.Context, id string) error {
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
		return fmt.Errorf("customer not found")
	}
	return nil
}
