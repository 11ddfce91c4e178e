package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bahsow/fleetdesk/internal/domain/models"
)

// SaveEntry inserts a daily entry and returns it with its assigned id.
func (r *Repository) SaveEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error) {
	entry.CreatedAt = time.Now().UTC()

	res, err := r.collection(entriesCollection).InsertOne(ctx, entry)
	if err != nil {
		return models.DailyEntry{}, fmt.Errorf("failed to insert daily entry: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid
	}
	return entry, nil
}

// ListEntries returns the owner's entries within [from, to], ordered by date.
func (r *Repository) ListEntries(ctx context.Context, ownerID string, from, to time.Time) ([]models.DailyEntry, error) {
	filter := bson.M{
		"owner_id": ownerID,
		"date":     bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cur, err := r.collection(entriesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer cur.Close(ctx)

	entries := make([]models.DailyEntry, 0)
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes a single entry scoped to its owner.
func (r *Repository) DeleteEntry(ctx context.Context, ownerID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid entry id %q: %w", id, ErrNotFound)
	}

	res, err := r.collection(entriesCollection).DeleteOne(ctx, bson.M{"_id": oid, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
