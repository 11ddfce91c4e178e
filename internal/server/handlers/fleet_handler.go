package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bahsow/fleetdesk/internal/domain/models"
	"github.com/bahsow/fleetdesk/internal/repository/mongodb"
	"github.com/bahsow/fleetdesk/internal/service/fleet"
)

const dateLayout = "2006-01-02"

// FleetHandler exposes car, entry and expense operations over HTTP.
type FleetHandler struct {
	svc    *fleet.Service
	logger *zap.Logger
}

// NewFleetHandler constructs the HTTP handler adapter.
func NewFleetHandler(svc *fleet.Service, logger *zap.Logger) *FleetHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FleetHandler{svc: svc, logger: logger}
}

type carRequest struct {
	Name  string `json:"name" binding:"required"`
	Plate string `json:"plate"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Notes string `json:"notes"`
}

type entryRequest struct {
	Date    string  `json:"date" binding:"required"`
	Driver  string  `json:"driver" binding:"required"`
	Vehicle string  `json:"vehicle" binding:"required"`
	Income  float64 `json:"income"`
	Trips   int     `json:"trips"`
	Notes   string  `json:"notes"`
}

type expenseRequest struct {
	Date    string  `json:"date" binding:"required"`
	Type    string  `json:"type" binding:"required"`
	Amount  float64 `json:"amount"`
	Vehicle string  `json:"vehicle"`
	Driver  string  `json:"driver"`
	Notes   string  `json:"notes"`
}

// CreateCar registers a new car for the calling owner.
func (h *FleetHandler) CreateCar(c *gin.Context) {
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	car, err := h.svc.CreateCar(c.Request.Context(), models.Car{
		OwnerID: ownerID(c),
		Name:    req.Name,
		Plate:   req.Plate,
		Model:   req.Model,
		Year:    req.Year,
		Notes:   req.Notes,
	})
	if err != nil {
		h.fail(c, err, "failed to create car")
		return
	}

	c.JSON(http.StatusCreated, car)
}

// ListCars returns all cars of the calling owner.
func (h *FleetHandler) ListCars(c *gin.Context) {
	cars, err := h.svc.ListCars(c.Request.Context(), ownerID(c))
	if err != nil {
		h.fail(c, err, "failed to list cars")
		return
	}
	c.JSON(http.StatusOK, cars)
}

// WatchCars streams the owner's car list as server-sent events: a snapshot on
// connect, then a refreshed snapshot after every change. Closing the
// connection unsubscribes.
func (h *FleetHandler) WatchCars(c *gin.Context) {
	ch, err := h.svc.WatchCars(c.Request.Context(), ownerID(c))
	if err != nil {
		h.fail(c, err, "failed to watch cars")
		return
	}

	c.Stream(func(w io.Writer) bool {
		cars, ok := <-ch
		if !ok {
			return false
		}
		c.SSEvent("cars", cars)
		return true
	})
}

// GetCar returns a single car by id.
func (h *FleetHandler) GetCar(c *gin.Context) {
	car, err := h.svc.GetCar(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load car")
		return
	}
	c.JSON(http.StatusOK, car)
}

// UpdateCar replaces the mutable fields of a car.
func (h *FleetHandler) UpdateCar(c *gin.Context) {
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	car, err := h.svc.GetCar(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load car")
		return
	}

	car.Name = req.Name
	car.Plate = req.Plate
	car.Model = req.Model
	car.Year = req.Year
	car.Notes = req.Notes

	if err := h.svc.UpdateCar(c.Request.Context(), car); err != nil {
		h.fail(c, err, "failed to update car")
		return
	}

	c.JSON(http.StatusOK, car)
}

// DeleteCar removes a car and its photo.
func (h *FleetHandler) DeleteCar(c *gin.Context) {
	if err := h.svc.DeleteCar(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete car")
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto attaches a multipart photo to a car and returns the updated
// document with its remote URL.
func (h *FleetHandler) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read photo"})
		return
	}
	defer src.Close()

	car, err := h.svc.AttachPhoto(c.Request.Context(), ownerID(c), c.Param("id"),
		file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		h.fail(c, err, "failed to upload photo")
		return
	}

	c.JSON(http.StatusOK, car)
}

// CreateEntry records a daily entry.
func (h *FleetHandler) CreateEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	entry, err := h.svc.RecordEntry(c.Request.Context(), models.DailyEntry{
		OwnerID: ownerID(c),
		Date:    date,
		Driver:  req.Driver,
		Vehicle: req.Vehicle,
		Income:  req.Income,
		Trips:   req.Trips,
		Notes:   req.Notes,
	})
	if err != nil {
		h.fail(c, err, "failed to record entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ListEntries returns the owner's entries for a date range.
func (h *FleetHandler) ListEntries(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.svc.Entries(c.Request.Context(), ownerID(c), from, to)
	if err != nil {
		h.fail(c, err, "failed to list entries")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// DeleteEntry removes a single entry.
func (h *FleetHandler) DeleteEntry(c *gin.Context) {
	if err := h.svc.DeleteEntry(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateExpense records an expense.
func (h *FleetHandler) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	expense, err := h.svc.RecordExpense(c.Request.Context(), models.Expense{
		OwnerID: ownerID(c),
		Date:    date,
		Type:    req.Type,
		Amount:  req.Amount,
		Vehicle: req.Vehicle,
		Driver:  req.Driver,
		Notes:   req.Notes,
	})
	if err != nil {
		h.fail(c, err, "failed to record expense")
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// ListExpenses returns the owner's expenses for a date range.
func (h *FleetHandler) ListExpenses(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expenses, err := h.svc.Expenses(c.Request.Context(), ownerID(c), from, to)
	if err != nil {
		h.fail(c, err, "failed to list expenses")
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// DeleteExpense removes a single expense.
func (h *FleetHandler) DeleteExpense(c *gin.Context) {
	if err := h.svc.DeleteExpense(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete expense")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FleetHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, fleet.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, mongodb.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, fleet.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage is not configured"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
