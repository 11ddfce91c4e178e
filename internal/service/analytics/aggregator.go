package analytics

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bahsow/fleetdesk/internal/domain/models"
)

// Aggregator turns a snapshot of daily entries and expenses into the
// AnalyticsData view state. It is a pure computation over in-memory slices;
// callers load the snapshot and decide where the result goes.
type Aggregator struct {
	loc    *time.Location
	logger *zap.Logger
}

// NewAggregator wires an aggregator for the given timezone. Dates are keyed by
// calendar day in that location.
func NewAggregator(loc *time.Location, logger *zap.Logger) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{loc: loc, logger: logger}
}

// Aggregate computes every analytics facet for the provided snapshot. The
// reference time anchors the monthly comparison and projection facets; entries
// and expenses are expected to already be bounded to the period of interest.
// Empty input yields empty facet slices and nil comparison/projection.
func (a *Aggregator) Aggregate(entries []models.DailyEntry, expenses []models.Expense, ref time.Time) models.AnalyticsData {
	return a.AggregateWithHistory(entries, expenses, nil, ref)
}

// AggregateWithHistory is Aggregate with extra entries from before the
// requested range, back to ComparisonStart(ref). History feeds only the
// monthly comparison and projection; the range-bound facets never see it.
func (a *Aggregator) AggregateWithHistory(entries []models.DailyEntry, expenses []models.Expense, history []models.DailyEntry, ref time.Time) models.AnalyticsData {
	data := models.AnalyticsData{
		Trend:             a.buildTrend(entries, expenses),
		DriverPerformance: a.buildDriverPerformance(entries),
		VehicleROI:        a.buildVehicleROI(entries, expenses),
		DayOfWeek:         a.buildDayOfWeek(entries),
		ExpenseBreakdown:  a.buildExpenseBreakdown(expenses),
	}
	data.Anomalies = a.detectAnomalies(data.Trend)

	monthly := entries
	if len(history) > 0 {
		monthly = make([]models.DailyEntry, 0, len(history)+len(entries))
		monthly = append(monthly, history...)
		monthly = append(monthly, entries...)
	}
	data.MonthlyComparison = a.buildMonthlyComparison(monthly, ref)
	data.Projection = a.buildProjection(monthly, ref, data.MonthlyComparison)

	a.logger.Debug("analytics snapshot aggregated",
		zap.Int("entries", len(entries)),
		zap.Int("expenses", len(expenses)),
		zap.Int("trend_points", len(data.Trend)),
		zap.Int("anomalies", len(data.Anomalies)))

	return data
}

// ComparisonStart returns the first day of the month preceding ref, the
// earliest date the comparison and projection facets consume. Callers whose
// range starts later should load [ComparisonStart, range start) as history.
func (a *Aggregator) ComparisonStart(ref time.Time) time.Time {
	ref = ref.In(a.loc)
	return time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, a.loc).AddDate(0, -1, 0)
}

// day truncates a timestamp to its calendar day in the aggregator's timezone.
func (a *Aggregator) day(t time.Time) time.Time {
	t = t.In(a.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.loc)
}

func (a *Aggregator) buildTrend(entries []models.DailyEntry, expenses []models.Expense) []models.TrendData {
	income := make(map[time.Time]float64)
	spent := make(map[time.Time]float64)

	for _, e := range entries {
		income[a.day(e.Date)] += e.Income
	}
	for _, e := range expenses {
		spent[a.day(e.Date)] += e.Amount
	}

	dates := make(map[time.Time]struct{}, len(income)+len(spent))
	for d := range income {
		dates[d] = struct{}{}
	}
	for d := range spent {
		dates[d] = struct{}{}
	}

	trend := make([]models.TrendData, 0, len(dates))
	for d := range dates {
		trend = append(trend, models.TrendData{
			Date:      d,
			Income:    income[d],
			Expenses:  spent[d],
			NetProfit: income[d] - spent[d],
		})
	}

	sort.Slice(trend, func(i, j int) bool { return trend[i].Date.Before(trend[j].Date) })
	return trend
}

func (a *Aggregator) buildDriverPerformance(entries []models.DailyEntry) []models.DriverPerformance {
	type acc struct {
		revenue float64
		trips   int
		days    map[time.Time]struct{}
	}
	byDriver := make(map[string]*acc)

	for _, e := range entries {
		if e.Driver == "" {
			continue
		}
		agg, ok := byDriver[e.Driver]
		if !ok {
			agg = &acc{days: make(map[time.Time]struct{})}
			byDriver[e.Driver] = agg
		}
		agg.revenue += e.Income
		agg.trips += e.Trips
		agg.days[a.day(e.Date)] = struct{}{}
	}

	out := make([]models.DriverPerformance, 0, len(byDriver))
	for name, agg := range byDriver {
		perf := models.DriverPerformance{
			DriverName:   name,
			TotalRevenue: agg.revenue,
			ActiveDays:   len(agg.days),
			TotalTrips:   agg.trips,
		}
		if perf.ActiveDays > 0 {
			perf.AverageRevenuePerDay = agg.revenue / float64(perf.ActiveDays)
		}
		out = append(out, perf)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].DriverName < out[j].DriverName
	})
	return out
}

func (a *Aggregator) buildVehicleROI(entries []models.DailyEntry, expenses []models.Expense) []models.VehicleROI {
	income := make(map[string]float64)
	spent := make(map[string]float64)

	for _, e := range entries {
		if e.Vehicle == "" {
			continue
		}
		income[e.Vehicle] += e.Income
	}
	for _, e := range expenses {
		if e.Vehicle == "" {
			continue
		}
		spent[e.Vehicle] += e.Amount
	}

	vehicles := make(map[string]struct{}, len(income)+len(spent))
	for v := range income {
		vehicles[v] = struct{}{}
	}
	for v := range spent {
		vehicles[v] = struct{}{}
	}

	out := make([]models.VehicleROI, 0, len(vehicles))
	for v := range vehicles {
		roi := models.VehicleROI{
			VehicleName:   v,
			TotalIncome:   income[v],
			TotalExpenses: spent[v],
			NetProfit:     income[v] - spent[v],
		}
		if roi.TotalExpenses > 0 {
			roi.ROI = round2(roi.NetProfit / roi.TotalExpenses * 100)
		}
		out = append(out, roi)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].VehicleName < out[j].VehicleName })
	return out
}

func (a *Aggregator) buildDayOfWeek(entries []models.DailyEntry) []models.DayOfWeekAnalysis {
	type acc struct {
		total float64
		days  map[time.Time]struct{}
	}
	byWeekday := make(map[time.Weekday]*acc)

	for _, e := range entries {
		d := a.day(e.Date)
		agg, ok := byWeekday[d.Weekday()]
		if !ok {
			agg = &acc{days: make(map[time.Time]struct{})}
			byWeekday[d.Weekday()] = agg
		}
		agg.total += e.Income
		agg.days[d] = struct{}{}
	}

	out := make([]models.DayOfWeekAnalysis, 0, len(byWeekday))
	for wd, agg := range byWeekday {
		row := models.DayOfWeekAnalysis{
			DayOfWeek:   wd,
			TotalDays:   len(agg.days),
			TotalIncome: agg.total,
		}
		if row.TotalDays > 0 {
			row.AverageIncome = agg.total / float64(row.TotalDays)
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out
}

func (a *Aggregator) buildExpenseBreakdown(expenses []models.Expense) []models.ExpenseBreakdown {
	type acc struct {
		total float64
		count int
	}
	byType := make(map[string]*acc)
	var grandTotal float64

	for _, e := range expenses {
		t := e.Type
		if t == "" {
			t = "other"
		}
		agg, ok := byType[t]
		if !ok {
			agg = &acc{}
			byType[t] = agg
		}
		agg.total += e.Amount
		agg.count++
		grandTotal += e.Amount
	}

	out := make([]models.ExpenseBreakdown, 0, len(byType))
	for t, agg := range byType {
		row := models.ExpenseBreakdown{
			ExpenseType: t,
			TotalAmount: agg.total,
			Count:       agg.count,
		}
		if grandTotal > 0 {
			row.Percentage = round2(agg.total / grandTotal * 100)
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].ExpenseType < out[j].ExpenseType
	})
	return out
}

func (a *Aggregator) buildMonthlyComparison(entries []models.DailyEntry, ref time.Time) *models.MonthlyComparison {
	ref = ref.In(a.loc)
	curStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, a.loc)
	prevStart := curStart.AddDate(0, -1, 0)

	var curTotal, prevTotal float64
	var seen bool

	for _, e := range entries {
		d := a.day(e.Date)
		switch {
		case !d.Before(curStart) && !d.After(a.day(ref)):
			curTotal += e.Income
			seen = true
		case !d.Before(prevStart) && d.Before(curStart):
			prevTotal += e.Income
			seen = true
		}
	}

	if !seen {
		return nil
	}

	cmp := &models.MonthlyComparison{
		CurrentMonth:  curStart.Format("2006-01"),
		CurrentTotal:  curTotal,
		PreviousMonth: prevStart.Format("2006-01"),
		PreviousTotal: prevTotal,
		GrowthAmount:  curTotal - prevTotal,
	}
	if prevTotal > 0 {
		cmp.GrowthPercentage = round2((curTotal - prevTotal) / prevTotal * 100)
	}
	return cmp
}

func (a *Aggregator) buildProjection(entries []models.DailyEntry, ref time.Time, cmp *models.MonthlyComparison) *models.ProjectionData {
	ref = ref.In(a.loc)
	curStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, a.loc)
	refDay := a.day(ref)

	var total float64
	activeDays := make(map[time.Time]struct{})

	for _, e := range entries {
		d := a.day(e.Date)
		if d.Before(curStart) || d.After(refDay) {
			continue
		}
		total += e.Income
		if e.Income > 0 {
			activeDays[d] = struct{}{}
		}
	}

	if total == 0 && len(activeDays) == 0 {
		return nil
	}

	daysElapsed := ref.Day()
	if daysElapsed < 1 {
		daysElapsed = 1
	}
	totalDays := daysInMonth(ref)

	proj := &models.ProjectionData{
		CurrentMonthTotal: total,
		DaysElapsed:       daysElapsed,
		TotalDaysInMonth:  totalDays,
		DailyAverage:      total / float64(daysElapsed),
		ActiveRevenueDays: len(activeDays),
	}
	proj.ProjectedMonthTotal = proj.DailyAverage * float64(totalDays)
	if proj.ActiveRevenueDays > 0 {
		proj.ActiveDayAverage = total / float64(proj.ActiveRevenueDays)
	}
	if cmp != nil && cmp.PreviousTotal > 0 {
		proj.ComparisonToPrevious = round2((proj.ProjectedMonthTotal - cmp.PreviousTotal) / cmp.PreviousTotal * 100)
	}
	return proj
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percentDeviation(actual, expected float64) float64 {
	if expected == 0 {
		return 0
	}
	return round2((actual - expected) / expected * 100)
}
