package analytics

import (
	"testing"

	"github.com/bahsow/fleetdesk/internal/domain/models"
)

// steadyTrend builds n days of identical income/expense points starting at day 1.
func steadyTrend(n int, income, expenses float64) []models.TrendData {
	trend := make([]models.TrendData, 0, n)
	for i := 1; i <= n; i++ {
		trend = append(trend, models.TrendData{
			Date:      day(i),
			Income:    income,
			Expenses:  expenses,
			NetProfit: income - expenses,
		})
	}
	return trend
}

func TestDetectAnomaliesSteadyTrendIsClean(t *testing.T) {
	agg := newTestAggregator()
	if got := agg.detectAnomalies(steadyTrend(10, 100, 20)); len(got) != 0 {
		t.Fatalf("expected no anomalies, got %+v", got)
	}
}

func TestDetectAnomaliesZeroIncome(t *testing.T) {
	agg := newTestAggregator()

	trend := steadyTrend(5, 100, 20)
	trend = append(trend, models.TrendData{Date: day(6), Income: 0, Expenses: 30, NetProfit: -30})

	got := agg.detectAnomalies(trend)
	if len(got) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(got))
	}
	a := got[0]
	if a.Type != models.AnomalyZeroIncome {
		t.Errorf("type = %s, want %s", a.Type, models.AnomalyZeroIncome)
	}
	if !a.Date.Equal(day(6)) {
		t.Errorf("date = %s, want day 6", a.Date)
	}
	if a.ExpectedValue != 100 {
		t.Errorf("expected value = %v, want 100", a.ExpectedValue)
	}
	if a.Deviation != -100 {
		t.Errorf("deviation = %v, want -100", a.Deviation)
	}
	if a.Reason == "" {
		t.Error("reason must be set")
	}
}

func TestDetectAnomaliesLowIncome(t *testing.T) {
	agg := newTestAggregator()

	trend := steadyTrend(5, 100, 0)
	trend = append(trend, models.TrendData{Date: day(6), Income: 40, NetProfit: 40})

	got := agg.detectAnomalies(trend)
	if len(got) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(got))
	}
	if got[0].Type != models.AnomalyLowIncome {
		t.Errorf("type = %s, want %s", got[0].Type, models.AnomalyLowIncome)
	}
	if got[0].Deviation != -60 {
		t.Errorf("deviation = %v, want -60", got[0].Deviation)
	}
}

func TestDetectAnomaliesHighExpenses(t *testing.T) {
	agg := newTestAggregator()

	trend := steadyTrend(5, 100, 20)
	trend = append(trend, models.TrendData{Date: day(6), Income: 100, Expenses: 80, NetProfit: 20})

	got := agg.detectAnomalies(trend)
	if len(got) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(got))
	}
	a := got[0]
	if a.Type != models.AnomalyHighExpenses {
		t.Errorf("type = %s, want %s", a.Type, models.AnomalyHighExpenses)
	}
	if a.ActualValue != 80 || a.ExpectedValue != 20 {
		t.Errorf("values = %v/%v, want 80/20", a.ActualValue, a.ExpectedValue)
	}
}

func TestDetectAnomaliesUnusualSpike(t *testing.T) {
	agg := newTestAggregator()

	trend := steadyTrend(5, 100, 0)
	trend = append(trend, models.TrendData{Date: day(6), Income: 500, NetProfit: 500})

	got := agg.detectAnomalies(trend)
	if len(got) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(got))
	}
	if got[0].Type != models.AnomalyUnusualPattern {
		t.Errorf("type = %s, want %s", got[0].Type, models.AnomalyUnusualPattern)
	}
}

func TestDetectAnomaliesNeedsBaseline(t *testing.T) {
	agg := newTestAggregator()

	// Only 2 prior days: below minBaselineDays, so the dip is not judged.
	trend := steadyTrend(2, 100, 0)
	trend = append(trend, models.TrendData{Date: day(3), Income: 10, NetProfit: 10})

	if got := agg.detectAnomalies(trend); len(got) != 0 {
		t.Fatalf("expected no anomalies without baseline, got %+v", got)
	}
}

func TestDetectAnomaliesOnePerDate(t *testing.T) {
	agg := newTestAggregator()

	// Zero income and inflated expenses on the same day: ZERO_INCOME wins.
	trend := steadyTrend(5, 100, 20)
	trend = append(trend, models.TrendData{Date: day(6), Income: 0, Expenses: 200, NetProfit: -200})

	got := agg.detectAnomalies(trend)
	if len(got) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(got))
	}
	if got[0].Type != models.AnomalyZeroIncome {
		t.Errorf("type = %s, want %s", got[0].Type, models.AnomalyZeroIncome)
	}
}

func TestTrailingMeanWindow(t *testing.T) {
	trend := steadyTrend(10, 100, 0)
	trend = append(trend, models.TrendData{Date: day(11), Income: 200})

	mean, n := trailingMean(trend, len(trend)-1, func(p models.TrendData) float64 { return p.Income })
	if n != anomalyWindow {
		t.Fatalf("window = %d, want %d", n, anomalyWindow)
	}
	if mean != 100 {
		t.Errorf("mean = %v, want 100", mean)
	}

	mean, n = trailingMean(trend, 0, func(p models.TrendData) float64 { return p.Income })
	if n != 0 || mean != 0 {
		t.Errorf("first point baseline = %v/%d, want 0/0", mean, n)
	}
}
