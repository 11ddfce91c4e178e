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

// SaveExpense inserts an expense and returns it with its assigned id.
func (r *Repository) SaveExpense(ctx context.Context, expense models.Expense) (models.Expense, error) {
	expense.CreatedAt = time.Now().UTC()

	res, err := r.collection(expensesCollection).InsertOne(ctx, expense)
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to insert expense: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		expense.ID = oid
	}
	return expense, nil
}

// ListExpenses returns the owner's expenses within [from, to], ordered by date.
func (r *Repository) ListExpenses(ctx context.Context, ownerID string, from, to time.Time) ([]models.Expense, error) {
	filter := bson.M{
		"owner_id": ownerID,
		"date":     bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cur, err := r.collection(expensesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer cur.Close(ctx)

	expenses := make([]models.Expense, 0)
	if err := cur.All(ctx, &expenses); err != nil {
		return nil, fmt.Errorf("failed to decode expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes a single expense scoped to its owner.
func (r *Repository) DeleteExpense(ctx context.Context, ownerID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid expense id %q: %w", id, ErrNotFound)
	}

	res, err := r.collection(expensesCollection).DeleteOne(ctx, bson.M{"_id": oid, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
