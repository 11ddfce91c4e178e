package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bahsow/fleetdesk/internal/domain/models"
	"github.com/bahsow/fleetdesk/internal/repository/mongodb"
	"github.com/bahsow/fleetdesk/internal/repository/sheets"
	"github.com/bahsow/fleetdesk/internal/service/analytics"
	"github.com/bahsow/fleetdesk/pkg/clients/notify"
)

const (
	dateLayout       = "2006-01-02"
	monthLayout      = "2006-01"
	reportSheetRange = "Reports!A:H"
)

// Service loads period snapshots from the store, runs the aggregator, and
// exports/notifies monthly summaries.
type Service struct {
	store    mongodb.Store
	agg      *analytics.Aggregator
	sheets   sheets.Repository
	notifier notify.Client
	logger   *zap.Logger
}

// NewService wires a reporting service. sheets and notifier may be nil when
// the corresponding integrations are disabled.
func NewService(store mongodb.Store, agg *analytics.Aggregator, sheetsRepo sheets.Repository, notifier notify.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		agg:      agg,
		sheets:   sheetsRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// BuildAnalytics loads the owner's entries and expenses for the range and
// aggregates them. A store read failure is reported through the Error field of
// the returned view state rather than an error return: the client renders the
// same shape either way.
func (s *Service) BuildAnalytics(ctx context.Context, ownerID string, from, to time.Time) models.AnalyticsData {
	entries, err := s.store.ListEntries(ctx, ownerID, from, to)
	if err != nil {
		s.logger.Error("failed to load entries", zap.String("owner", ownerID), zap.Error(err))
		return failedAnalytics(fmt.Sprintf("failed to load entries: %v", err))
	}

	expenses, err := s.store.ListExpenses(ctx, ownerID, from, to)
	if err != nil {
		s.logger.Error("failed to load expenses", zap.String("owner", ownerID), zap.Error(err))
		return failedAnalytics(fmt.Sprintf("failed to load expenses: %v", err))
	}

	// The comparison and projection facets span the full prior calendar
	// month, which the requested range may not reach back to.
	var history []models.DailyEntry
	if histFrom := s.agg.ComparisonStart(to); histFrom.Before(from) {
		history, err = s.store.ListEntries(ctx, ownerID, histFrom, from.Add(-time.Nanosecond))
		if err != nil {
			s.logger.Error("failed to load comparison history", zap.String("owner", ownerID), zap.Error(err))
			return failedAnalytics(fmt.Sprintf("failed to load entries: %v", err))
		}
	}

	return s.agg.AggregateWithHistory(entries, expenses, history, to)
}

// failedAnalytics keeps the facet slices non-nil so the client always renders
// the same shape; only Error distinguishes a failed read from an empty period.
func failedAnalytics(msg string) models.AnalyticsData {
	return models.AnalyticsData{
		Trend:             []models.TrendData{},
		DriverPerformance: []models.DriverPerformance{},
		VehicleROI:        []models.VehicleROI{},
		DayOfWeek:         []models.DayOfWeekAnalysis{},
		ExpenseBreakdown:  []models.ExpenseBreakdown{},
		Anomalies:         []models.AnomalyData{},
		Error:             msg,
	}
}

// ScanAnomalies aggregates the trailing 30 days and returns any flagged dates.
func (s *Service) ScanAnomalies(ctx context.Context, ownerID string, now time.Time) ([]models.AnomalyData, error) {
	from := now.AddDate(0, 0, -30)
	data := s.BuildAnalytics(ctx, ownerID, from, now)
	if data.Error != "" {
		return nil, fmt.Errorf("anomaly scan: %s", data.Error)
	}
	return data.Anomalies, nil
}

// ExportMonthlyReport aggregates the given month, appends a per-vehicle
// summary to the report sheet, and notifies the webhook. month may be any
// instant inside the month to export.
func (s *Service) ExportMonthlyReport(ctx context.Context, ownerID string, month time.Time) error {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	data := s.BuildAnalytics(ctx, ownerID, start, end)
	if data.Error != "" {
		return fmt.Errorf("monthly export: %s", data.Error)
	}

	if s.sheets != nil {
		if err := s.sheets.AppendRows(ctx, reportSheetRange, reportRows(ownerID, start, data)); err != nil {
			return fmt.Errorf("export monthly report: %w", err)
		}
		s.logger.Info("monthly report exported",
			zap.String("owner", ownerID), zap.String("month", start.Format(monthLayout)))
	}

	if s.notifier != nil {
		n := notify.Notification{
			Kind:    "monthly_report",
			OwnerID: ownerID,
			Subject: fmt.Sprintf("Fleet report %s", start.Format(monthLayout)),
			Body:    FormatSummary(start, data),
		}
		if err := s.notifier.Send(ctx, n); err != nil {
			// Export already succeeded; delivery failure is not fatal.
			s.logger.Warn("failed to send report notification", zap.Error(err))
		}
	}

	return nil
}

// NotifyAnomalies pushes a summary of flagged dates to the webhook.
func (s *Service) NotifyAnomalies(ctx context.Context, ownerID string, anomalies []models.AnomalyData) error {
	if s.notifier == nil || len(anomalies) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d anomalies detected:\n", len(anomalies))
	for _, a := range anomalies {
		fmt.Fprintf(&b, "- %s [%s] %s\n", a.Date.Format(dateLayout), a.Type, a.Reason)
	}

	return s.notifier.Send(ctx, notify.Notification{
		Kind:    "anomaly_alert",
		OwnerID: ownerID,
		Subject: "Fleet anomalies detected",
		Body:    b.String(),
	})
}

// reportRows shapes the month's vehicle ROI facet into sheet rows: one header
// row per month, then one row per vehicle.
func reportRows(ownerID string, month time.Time, data models.AnalyticsData) [][]interface{} {
	var totalIncome, totalExpenses float64
	for _, t := range data.Trend {
		totalIncome += t.Income
		totalExpenses += t.Expenses
	}

	rows := [][]interface{}{
		{month.Format(monthLayout), ownerID, "TOTAL", totalIncome, totalExpenses, totalIncome - totalExpenses, "", len(data.Anomalies)},
	}
	for _, v := range data.VehicleROI {
		rows = append(rows, []interface{}{
			month.Format(monthLayout), ownerID, v.VehicleName, v.TotalIncome, v.TotalExpenses, v.NetProfit, v.ROI, "",
		})
	}
	return rows
}

// FormatSummary renders a short human-readable month summary for delivery.
func FormatSummary(month time.Time, data models.AnalyticsData) string {
	var totalIncome, totalExpenses float64
	for _, t := range data.Trend {
		totalIncome += t.Income
		totalExpenses += t.Expenses
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fleet summary %s\n", month.Format(monthLayout))
	fmt.Fprintf(&b, "Income: %.2f, Expenses: %.2f, Net: %.2f\n", totalIncome, totalExpenses, totalIncome-totalExpenses)

	if len(data.DriverPerformance) > 0 {
		top := data.DriverPerformance[0]
		fmt.Fprintf(&b, "Top driver: %s (%.2f over %d active days)\n", top.DriverName, top.TotalRevenue, top.ActiveDays)
	}
	if cmp := data.MonthlyComparison; cmp != nil && cmp.PreviousTotal > 0 {
		fmt.Fprintf(&b, "Growth vs %s: %+.2f%%\n", cmp.PreviousMonth, cmp.GrowthPercentage)
	}
	if len(data.Anomalies) > 0 {
		fmt.Fprintf(&b, "Anomalies flagged: %d\n", len(data.Anomalies))
	}

	return b.String()
}
