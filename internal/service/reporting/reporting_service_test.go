package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bahsow/fleetdesk/internal/domain/models"
	"github.com/bahsow/fleetdesk/internal/repository/mongodb"
	"github.com/bahsow/fleetdesk/internal/service/analytics"
	"github.com/bahsow/fleetdesk/pkg/clients/notify"
)

type fakeStore struct {
	mongodb.Store
	entries  []models.DailyEntry
	expenses []models.Expense
	failWith error
}

func (f *fakeStore) ListEntries(_ context.Context, _ string, from, to time.Time) ([]models.DailyEntry, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]models.DailyEntry, 0)
	for _, e := range f.entries {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListExpenses(_ context.Context, _ string, from, to time.Time) ([]models.Expense, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]models.Expense, 0)
	for _, e := range f.expenses {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSheets struct {
	ranges []string
	rows   [][][]interface{}
}

func (f *fakeSheets) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	f.ranges = append(f.ranges, sheetRange)
	f.rows = append(f.rows, rows)
	return nil
}

func (f *fakeSheets) ReadRange(context.Context, string) ([][]interface{}, error) {
	return nil, nil
}

type fakeNotifier struct {
	sent []notify.Notification
}

func (f *fakeNotifier) Send(_ context.Context, n notify.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(store *fakeStore, sheetsRepo *fakeSheets, notifier *fakeNotifier) *Service {
	agg := analytics.NewAggregator(time.UTC, nil)
	var s *Service
	if sheetsRepo != nil && notifier != nil {
		s = NewService(store, agg, sheetsRepo, notifier, nil)
	} else {
		s = NewService(store, agg, nil, nil, nil)
	}
	return s
}

func TestBuildAnalytics(t *testing.T) {
	store := &fakeStore{
		entries: []models.DailyEntry{
			{Date: date(2025, 7, 1), Driver: "A", Vehicle: "car-1", Income: 100},
			{Date: date(2025, 7, 2), Driver: "A", Vehicle: "car-1", Income: 200},
		},
		expenses: []models.Expense{
			{Date: date(2025, 7, 1), Type: "fuel", Amount: 50, Vehicle: "car-1"},
		},
	}
	svc := newTestService(store, nil, nil)

	data := svc.BuildAnalytics(context.Background(), "o1", date(2025, 7, 1), date(2025, 7, 31))

	if data.Error != "" {
		t.Fatalf("unexpected error: %s", data.Error)
	}
	if len(data.Trend) != 2 {
		t.Fatalf("expected 2 trend points, got %d", len(data.Trend))
	}
	if data.Trend[0].NetProfit != 50 || data.Trend[1].NetProfit != 200 {
		t.Errorf("trend = %+v", data.Trend)
	}
}

func TestBuildAnalyticsComparisonSpansPreviousMonth(t *testing.T) {
	store := &fakeStore{
		entries: []models.DailyEntry{
			{Date: date(2025, 6, 10), Driver: "A", Vehicle: "car-1", Income: 900},
			{Date: date(2025, 7, 5), Driver: "A", Vehicle: "car-1", Income: 300},
		},
	}
	svc := newTestService(store, nil, nil)

	// The range covers July only; the comparison still needs all of June.
	data := svc.BuildAnalytics(context.Background(), "o1", date(2025, 7, 1), date(2025, 7, 31))

	if data.Error != "" {
		t.Fatalf("unexpected error: %s", data.Error)
	}
	if len(data.Trend) != 1 {
		t.Fatalf("trend must stay bounded to the range, got %d points", len(data.Trend))
	}

	cmp := data.MonthlyComparison
	if cmp == nil {
		t.Fatal("expected monthly comparison")
	}
	if cmp.PreviousMonth != "2025-06" || cmp.PreviousTotal != 900 {
		t.Errorf("previous = %s/%v, want 2025-06/900", cmp.PreviousMonth, cmp.PreviousTotal)
	}
	if cmp.CurrentTotal != 300 || cmp.GrowthAmount != -600 {
		t.Errorf("current = %v, growth amount = %v, want 300/-600", cmp.CurrentTotal, cmp.GrowthAmount)
	}
	if cmp.GrowthPercentage != -66.67 {
		t.Errorf("growth percentage = %v, want -66.67", cmp.GrowthPercentage)
	}
	if data.Projection == nil || data.Projection.ComparisonToPrevious != -66.67 {
		t.Errorf("projection = %+v, want comparison -66.67", data.Projection)
	}
}

func TestBuildAnalyticsStoreFailure(t *testing.T) {
	store := &fakeStore{failWith: errors.New("connection reset")}
	svc := newTestService(store, nil, nil)

	data := svc.BuildAnalytics(context.Background(), "o1", date(2025, 7, 1), date(2025, 7, 31))

	if data.Error == "" {
		t.Fatal("expected error to be set")
	}
	if data.Trend == nil || len(data.Trend) != 0 {
		t.Errorf("trend must be empty non-nil, got %#v", data.Trend)
	}
	if data.MonthlyComparison != nil || data.Projection != nil {
		t.Error("comparison and projection must be absent on failure")
	}
	if data.IsLoading {
		t.Error("IsLoading must be false")
	}
}

func TestExportMonthlyReport(t *testing.T) {
	store := &fakeStore{
		entries: []models.DailyEntry{
			{Date: date(2025, 6, 10), Driver: "A", Vehicle: "car-1", Income: 300},
			{Date: date(2025, 6, 11), Driver: "B", Vehicle: "car-2", Income: 150},
		},
		expenses: []models.Expense{
			{Date: date(2025, 6, 10), Type: "fuel", Amount: 100, Vehicle: "car-1"},
		},
	}
	sheetsRepo := &fakeSheets{}
	notifier := &fakeNotifier{}
	svc := newTestService(store, sheetsRepo, notifier)

	if err := svc.ExportMonthlyReport(context.Background(), "o1", date(2025, 6, 15)); err != nil {
		t.Fatal(err)
	}

	if len(sheetsRepo.rows) != 1 {
		t.Fatalf("expected one append call, got %d", len(sheetsRepo.rows))
	}
	rows := sheetsRepo.rows[0]
	// header row + one per vehicle
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][2] != "TOTAL" {
		t.Errorf("first row must be the total, got %v", rows[0])
	}
	if rows[0][0] != "2025-06" {
		t.Errorf("month cell = %v, want 2025-06", rows[0][0])
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].Kind != "monthly_report" {
		t.Errorf("kind = %s", notifier.sent[0].Kind)
	}
	if !strings.Contains(notifier.sent[0].Body, "Income: 450.00") {
		t.Errorf("summary body = %q", notifier.sent[0].Body)
	}
}

func TestExportMonthlyReportStoreFailure(t *testing.T) {
	store := &fakeStore{failWith: errors.New("boom")}
	svc := newTestService(store, &fakeSheets{}, &fakeNotifier{})

	if err := svc.ExportMonthlyReport(context.Background(), "o1", date(2025, 6, 15)); err == nil {
		t.Fatal("expected error")
	}
}

func TestScanAnomalies(t *testing.T) {
	entries := make([]models.DailyEntry, 0)
	base := date(2025, 7, 1)
	for i := 0; i < 6; i++ {
		entries = append(entries, models.DailyEntry{
			Date: base.AddDate(0, 0, i), Driver: "A", Vehicle: "car-1", Income: 100,
		})
	}
	// day 7 collapses to a tenth of the baseline
	entries = append(entries, models.DailyEntry{
		Date: base.AddDate(0, 0, 6), Driver: "A", Vehicle: "car-1", Income: 10,
	})

	store := &fakeStore{entries: entries}
	svc := newTestService(store, nil, nil)

	anomalies, err := svc.ScanAnomalies(context.Background(), "o1", date(2025, 7, 8))
	if err != nil {
		t.Fatal(err)
	}
	if len(anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(anomalies))
	}
	if anomalies[0].Type != models.AnomalyLowIncome {
		t.Errorf("type = %s, want %s", anomalies[0].Type, models.AnomalyLowIncome)
	}
}

func TestNotifyAnomalies(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(&fakeStore{}, &fakeSheets{}, notifier)

	anomalies := []models.AnomalyData{
		{Date: date(2025, 7, 3), Type: models.AnomalyZeroIncome, Reason: "no income recorded"},
	}
	if err := svc.NotifyAnomalies(context.Background(), "o1", anomalies); err != nil {
		t.Fatal(err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	body := notifier.sent[0].Body
	if !strings.Contains(body, "ZERO_INCOME") || !strings.Contains(body, "2025-07-03") {
		t.Errorf("body = %q", body)
	}
}

func TestNotifyAnomaliesNoopWhenEmpty(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(&fakeStore{}, &fakeSheets{}, notifier)

	if err := svc.NotifyAnomalies(context.Background(), "o1", nil); err != nil {
		t.Fatal(err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notifications, got %d", len(notifier.sent))
	}
}
