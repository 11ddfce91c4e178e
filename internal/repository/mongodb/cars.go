package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bahsow/fleetdesk/internal/domain/models"
)

// SaveCar inserts a new car document and returns it with its assigned id.
func (r *Repository) SaveCar(ctx context.Context, car models.Car) (models.Car, error) {
	now := time.Now().UTC()
	car.CreatedAt = now
	car.UpdatedAt = now

	res, err := r.collection(carsCollection).InsertOne(ctx, car)
	if err != nil {
		return models.Car{}, fmt.Errorf("failed to insert car: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		car.ID = oid
	}
	return car, nil
}

// UpdateCar replaces the mutable fields of an existing car.
func (r *Repository) UpdateCar(ctx context.Context, car models.Car) error {
	filter := bson.M{"_id": car.ID, "owner_id": car.OwnerID}
	update := bson.M{"$set": bson.M{
		"name":       car.Name,
		"plate":      car.Plate,
		"model":      car.Model,
		"year":       car.Year,
		"photo_url":  car.PhotoURL,
		"notes":      car.Notes,
		"updated_at": time.Now().UTC(),
	}}

	res, err := r.collection(carsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCar fetches a single car scoped to its owner.
func (r *Repository) GetCar(ctx context.Context, ownerID, id string) (models.Car, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Car{}, fmt.Errorf("invalid car id %q: %w", id, ErrNotFound)
	}

	var car models.Car
	err = r.collection(carsCollection).FindOne(ctx, bson.M{"_id": oid, "owner_id": ownerID}).Decode(&car)
	if err == mongo.ErrNoDocuments {
		return models.Car{}, ErrNotFound
	}
	if err != nil {
		return models.Car{}, fmt.Errorf("failed to load car: %w", err)
	}
	return car, nil
}

// DeleteCar removes a car and returns the deleted document so callers can
// clean up attached resources such as the photo.
func (r *Repository) DeleteCar(ctx context.Context, ownerID, id string) (models.Car, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Car{}, fmt.Errorf("invalid car id %q: %w", id, ErrNotFound)
	}

	var car models.Car
	err = r.collection(carsCollection).FindOneAndDelete(ctx, bson.M{"_id": oid, "owner_id": ownerID}).Decode(&car)
	if err == mongo.ErrNoDocuments {
		return models.Car{}, ErrNotFound
	}
	if err != nil {
		return models.Car{}, fmt.Errorf("failed to delete car: %w", err)
	}
	return car, nil
}

// ListCars returns all cars belonging to the owner, newest first.
func (r *Repository) ListCars(ctx context.Context, ownerID string) ([]models.Car, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.collection(carsCollection).Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	defer cur.Close(ctx)

	cars := make([]models.Car, 0)
	if err := cur.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("failed to decode cars: %w", err)
	}
	return cars, nil
}

// WatchCars delivers the owner's full car list on a channel: an initial
// snapshot first, then a refreshed snapshot after every change to the
// collection. Cancelling the context unsubscribes and closes the channel.
func (r *Repository) WatchCars(ctx context.Context, ownerID string) (<-chan []models.Car, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"fullDocument.owner_id": ownerID}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.collection(carsCollection).Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open car change stream: %w", err)
	}

	ch := make(chan []models.Car, 1)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		if cars, err := r.ListCars(ctx, ownerID); err == nil {
			select {
			case ch <- cars:
			case <-ctx.Done():
				return
			}
		}

		for stream.Next(ctx) {
			cars, err := r.ListCars(ctx, ownerID)
			if err != nil {
				continue
			}
			select {
			case ch <- cars:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}
