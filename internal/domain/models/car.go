package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Car is a vehicle registered by a fleet owner.
type Car struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	Name      string             `bson:"name" json:"name"`
	Plate     string             `bson:"plate" json:"plate"`
	Model     string             `bson:"model,omitempty" json:"model,omitempty"`
	Year      int                `bson:"year,omitempty" json:"year,omitempty"`
	PhotoURL  string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
