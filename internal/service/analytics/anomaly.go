package analytics

import (
	"fmt"

	"github.com/bahsow/fleetdesk/internal/domain/models"
)

// Baseline and threshold constants for anomaly detection. The baseline is the
// trailing mean over up to anomalyWindow prior trend points; a point is only
// judged against it once minBaselineDays of history exist.
const (
	anomalyWindow   = 7
	minBaselineDays = 3

	lowIncomeRatio     = 0.60
	highExpensesRatio  = 1.80
	unusualIncomeRatio = 2.50
)

// detectAnomalies walks the date-ordered trend series and flags at most one
// anomaly per date. Precedence: ZERO_INCOME > HIGH_EXPENSES > LOW_INCOME >
// UNUSUAL_PATTERN.
func (a *Aggregator) detectAnomalies(trend []models.TrendData) []models.AnomalyData {
	anomalies := make([]models.AnomalyData, 0)

	for i, point := range trend {
		incomeBase, incomeDays := trailingMean(trend, i, func(t models.TrendData) float64 { return t.Income })
		expenseBase, expenseDays := trailingMean(trend, i, func(t models.TrendData) float64 { return t.Expenses })

		if point.Income == 0 {
			anomalies = append(anomalies, models.AnomalyData{
				Date:          point.Date,
				Type:          models.AnomalyZeroIncome,
				ActualValue:   0,
				ExpectedValue: incomeBase,
				Deviation:     percentDeviation(0, incomeBase),
				Reason:        fmt.Sprintf("no income recorded on %s despite fleet activity", point.Date.Format("2006-01-02")),
			})
			continue
		}

		if expenseDays >= minBaselineDays && expenseBase > 0 && point.Expenses > expenseBase*highExpensesRatio {
			anomalies = append(anomalies, models.AnomalyData{
				Date:          point.Date,
				Type:          models.AnomalyHighExpenses,
				ActualValue:   point.Expenses,
				ExpectedValue: expenseBase,
				Deviation:     percentDeviation(point.Expenses, expenseBase),
				Reason:        fmt.Sprintf("expenses %.2f far above the trailing average of %.2f", point.Expenses, expenseBase),
			})
			continue
		}

		if incomeDays < minBaselineDays || incomeBase <= 0 {
			continue
		}

		switch {
		case point.Income < incomeBase*lowIncomeRatio:
			anomalies = append(anomalies, models.AnomalyData{
				Date:          point.Date,
				Type:          models.AnomalyLowIncome,
				ActualValue:   point.Income,
				ExpectedValue: incomeBase,
				Deviation:     percentDeviation(point.Income, incomeBase),
				Reason:        fmt.Sprintf("income %.2f well below the trailing average of %.2f", point.Income, incomeBase),
			})
		case point.Income > incomeBase*unusualIncomeRatio:
			anomalies = append(anomalies, models.AnomalyData{
				Date:          point.Date,
				Type:          models.AnomalyUnusualPattern,
				ActualValue:   point.Income,
				ExpectedValue: incomeBase,
				Deviation:     percentDeviation(point.Income, incomeBase),
				Reason:        fmt.Sprintf("income %.2f is an unusual spike over the trailing average of %.2f", point.Income, incomeBase),
			})
		}
	}

	return anomalies
}

// trailingMean averages the selected value over up to anomalyWindow points
// preceding index i, returning the mean and the number of points it rests on.
func trailingMean(trend []models.TrendData, i int, value func(models.TrendData) float64) (float64, int) {
	start := i - anomalyWindow
	if start < 0 {
		start = 0
	}
	var sum float64
	n := i - start
	if n == 0 {
		return 0, 0
	}
	for _, p := range trend[start:i] {
		sum += value(p)
	}
	return sum / float64(n), n
}
