package fleet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/bahsow/fleetdesk/internal/domain/models"
	"github.com/bahsow/fleetdesk/internal/repository/mongodb"
	"github.com/bahsow/fleetdesk/internal/storage"
)

// ErrValidation marks rejected input; handlers map it to a 400.
var ErrValidation = errors.New("validation failed")

// ErrStorageDisabled is returned for photo operations when no photo store is
// configured.
var ErrStorageDisabled = errors.New("photo storage is not configured")

// Service orchestrates car, entry and expense operations over the document
// store and the photo store.
type Service struct {
	store  mongodb.Store
	photos storage.PhotoStore
	logger *zap.Logger
}

// NewService wires a fleet service. photos may be nil when storage is disabled.
func NewService(store mongodb.Store, photos storage.PhotoStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, photos: photos, logger: logger}
}

// CreateCar validates and persists a new car.
func (s *Service) CreateCar(ctx context.Context, car models.Car) (models.Car, error) {
	if car.OwnerID == "" {
		return models.Car{}, fmt.Errorf("%w: owner id is required", ErrValidation)
	}
	if car.Name == "" {
		return models.Car{}, fmt.Errorf("%w: car name is required", ErrValidation)
	}
	return s.store.SaveCar(ctx, car)
}

// UpdateCar replaces the mutable fields of an existing car.
func (s *Service) UpdateCar(ctx context.Context, car models.Car) error {
	if car.ID.IsZero() || car.OwnerID == "" {
		return fmt.Errorf("%w: car id and owner id are required", ErrValidation)
	}
	if car.Name == "" {
		return fmt.Errorf("%w: car name is required", ErrValidation)
	}
	return s.store.UpdateCar(ctx, car)
}

// GetCar fetches a single car.
func (s *Service) GetCar(ctx context.Context, ownerID, id string) (models.Car, error) {
	return s.store.GetCar(ctx, ownerID, id)
}

// ListCars returns all of the owner's cars.
func (s *Service) ListCars(ctx context.Context, ownerID string) ([]models.Car, error) {
	return s.store.ListCars(ctx, ownerID)
}

// WatchCars exposes the continuously updated car list. Cancel the context to
// unsubscribe.
func (s *Service) WatchCars(ctx context.Context, ownerID string) (<-chan []models.Car, error) {
	return s.store.WatchCars(ctx, ownerID)
}

// DeleteCar removes a car and best-effort deletes its photo. A photo cleanup
// failure is logged, not surfaced: the document is already gone.
func (s *Service) DeleteCar(ctx context.Context, ownerID, id string) error {
	car, err := s.store.DeleteCar(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if car.PhotoURL != "" && s.photos != nil {
		if err := s.photos.DeletePhoto(ctx, car.PhotoURL); err != nil {
			s.logger.Warn("failed to delete car photo",
				zap.String("car_id", id), zap.String("url", car.PhotoURL), zap.Error(err))
		}
	}
	return nil
}

// AttachPhoto uploads a photo for the car and stores the returned URL on the
// document. A previously attached photo is deleted best-effort after the
// replacement succeeds.
func (s *Service) AttachPhoto(ctx context.Context, ownerID, carID, filename string, r io.Reader, size int64, contentType string) (models.Car, error) {
	if s.photos == nil {
		return models.Car{}, ErrStorageDisabled
	}
	if filename == "" {
		return models.Car{}, fmt.Errorf("%w: photo filename is required", ErrValidation)
	}

	car, err := s.store.GetCar(ctx, ownerID, carID)
	if err != nil {
		return models.Car{}, err
	}

	objectName := fmt.Sprintf("cars/%s/%d-%s", carID, time.Now().UnixNano(), filename)
	url, err := s.photos.UploadPhoto(ctx, objectName, r, size, contentType)
	if err != nil {
		return models.Car{}, err
	}

	previous := car.PhotoURL
	car.PhotoURL = url
	if err := s.store.UpdateCar(ctx, car); err != nil {
		return models.Car{}, err
	}

	if previous != "" {
		if err := s.photos.DeletePhoto(ctx, previous); err != nil {
			s.logger.Warn("failed to delete replaced photo",
				zap.String("car_id", carID), zap.String("url", previous), zap.Error(err))
		}
	}

	return car, nil
}

// RecordEntry validates and persists a daily entry.
func (s *Service) RecordEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error) {
	switch {
	case entry.OwnerID == "":
		return models.DailyEntry{}, fmt.Errorf("%w: owner id is required", ErrValidation)
	case entry.Date.IsZero():
		return models.DailyEntry{}, fmt.Errorf("%w: entry date is required", ErrValidation)
	case entry.Driver == "":
		return models.DailyEntry{}, fmt.Errorf("%w: driver is required", ErrValidation)
	case entry.Vehicle == "":
		return models.DailyEntry{}, fmt.Errorf("%w: vehicle is required", ErrValidation)
	case entry.Income < 0:
		return models.DailyEntry{}, fmt.Errorf("%w: income must not be negative", ErrValidation)
	case entry.Trips < 0:
		return models.DailyEntry{}, fmt.Errorf("%w: trips must not be negative", ErrValidation)
	}
	return s.store.SaveEntry(ctx, entry)
}

// Entries returns the owner's entries for a date range.
func (s *Service) Entries(ctx context.Context, ownerID string, from, to time.Time) ([]models.DailyEntry, error) {
	return s.store.ListEntries(ctx, ownerID, from, to)
}

// DeleteEntry removes a single entry.
func (s *Service) DeleteEntry(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteEntry(ctx, ownerID, id)
}

// RecordExpense validates and persists an expense.
func (s *Service) RecordExpense(ctx context.Context, expense models.Expense) (models.Expense, error) {
	switch {
	case expense.OwnerID == "":
		return models.Expense{}, fmt.Errorf("%w: owner id is required", ErrValidation)
	case expense.Date.IsZero():
		return models.Expense{}, fmt.Errorf("%w: expense date is required", ErrValidation)
	case expense.Type == "":
		return models.Expense{}, fmt.Errorf("%w: expense type is required", ErrValidation)
	case expense.Amount <= 0:
		return models.Expense{}, fmt.Errorf("%w: expense amount must be positive", ErrValidation)
	}
	return s.store.SaveExpense(ctx, expense)
}

// Expenses returns the owner's expenses for a date range.
func (s *Service) Expenses(ctx context.Context, ownerID string, from, to time.Time) ([]models.Expense, error) {
	return s.store.ListExpenses(ctx, ownerID, from, to)
}

// DeleteExpense removes a single expense.
func (s *Service) DeleteExpense(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteExpense(ctx, ownerID, id)
}
