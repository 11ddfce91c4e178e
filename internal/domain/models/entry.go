package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyEntry captures one day of revenue for a driver/vehicle pair.
// Entries are immutable once recorded; corrections happen by delete + re-insert.
type DailyEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	Date      time.Time          `bson:"date" json:"date"`
	Driver    string             `bson:"driver" json:"driver"`
	Vehicle   string             `bson:"vehicle" json:"vehicle"`
	Income    float64            `bson:"income" json:"income"`
	Trips     int                `bson:"trips,omitempty" json:"trips,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Expense captures an operating cost tied to a vehicle and optionally a driver.
type Expense struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	Date      time.Time          `bson:"date" json:"date"`
	Type      string             `bson:"type" json:"type"`
	Amount    float64            `bson:"amount" json:"amount"`
	Vehicle   string             `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	Driver    string             `bson:"driver,omitempty" json:"driver,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
