package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bahsow/fleetdesk/internal/domain/models"
)

// ErrNotFound is returned when a document does not exist or belongs to a
// different owner.
var ErrNotFound = errors.New("document not found")

const (
	carsCollection     = "cars"
	entriesCollection  = "daily_entries"
	expensesCollection = "expenses"
)

// Store defines the document-store operations the services depend on.
type Store interface {
	SaveCar(ctx context.Context, car models.Car) (models.Car, error)
	UpdateCar(ctx context.Context, car models.Car) error
	DeleteCar(ctx context.Context, ownerID, id string) (models.Car, error)
	GetCar(ctx context.Context, ownerID, id string) (models.Car, error)
	ListCars(ctx context.Context, ownerID string) ([]models.Car, error)
	WatchCars(ctx context.Context, ownerID string) (<-chan []models.Car, error)

	SaveEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error)
	ListEntries(ctx context.Context, ownerID string, from, to time.Time) ([]models.DailyEntry, error)
	DeleteEntry(ctx context.Context, ownerID, id string) error

	SaveExpense(ctx context.Context, expense models.Expense) (models.Expense, error)
	ListExpenses(ctx context.Context, ownerID string, from, to time.Time) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, id string) error
}

// Repository implements Store on top of MongoDB.
type Repository struct {
	client *mongo.Client
	dbName string
}

// NewRepository connects to MongoDB and verifies the connection with a ping.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{client: client, dbName: dbName}, nil
}

func (r *Repository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

var _ Store = (*Repository)(nil)
