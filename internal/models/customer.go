package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is the tenant that owns vehicles, drivers and, transitively,
// trips and positions.
type Customer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// RegisterRequest represents a customer signup request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthRequest represents an authentication request. Either the customer ID
// or the email identifies the account; the password is only checked when
// the account has one set.
type AuthRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Password   string `json:"password,omitempty"`
}

// AuthResponse represents a successful authentication response.
type AuthResponse struct {
	Token      string   `json:"token"`
	CustomerID string   `json:"customer_id"`
	Customer   Customer `json:"customer"`
}

// Claims represents the JWT claims carried by an API token.
type Claims struct {
	CustomerID string `json:"customer_id"`
	Exp        int64  `json:"exp"`
}
