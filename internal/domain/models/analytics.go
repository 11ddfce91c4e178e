package models

import "time"

// AnomalyType classifies why a date was flagged.
type AnomalyType string

const (
	AnomalyZeroIncome     AnomalyType = "ZERO_INCOME"
	AnomalyLowIncome      AnomalyType = "LOW_INCOME"
	AnomalyHighExpenses   AnomalyType = "HIGH_EXPENSES"
	AnomalyUnusualPattern AnomalyType = "UNUSUAL_PATTERN"
)

// TrendData is one point of the income/expense time series.
type TrendData struct {
	Date      time.Time `json:"date"`
	Income    float64   `json:"income"`
	Expenses  float64   `json:"expenses"`
	NetProfit float64   `json:"net_profit"`
}

// DriverPerformance aggregates revenue per driver over the period.
type DriverPerformance struct {
	DriverName           string  `json:"driver_name"`
	TotalRevenue         float64 `json:"total_revenue"`
	AverageRevenuePerDay float64 `json:"average_revenue_per_day"`
	ActiveDays           int     `json:"active_days"`
	TotalTrips           int     `json:"total_trips"`
}

// VehicleROI aggregates income against expenses per vehicle.
// ROI is 0 when the vehicle carried no expenses in the period.
type VehicleROI struct {
	VehicleName   string  `json:"vehicle_name"`
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
	ROI           float64 `json:"roi"`
}

// DayOfWeekAnalysis aggregates income per weekday across the whole period.
type DayOfWeekAnalysis struct {
	DayOfWeek     time.Weekday `json:"day_of_week"`
	AverageIncome float64      `json:"average_income"`
	TotalDays     int          `json:"total_days"`
	TotalIncome   float64      `json:"total_income"`
}

// ExpenseBreakdown aggregates expenses per type with its share of the grand total.
type ExpenseBreakdown struct {
	ExpenseType string  `json:"expense_type"`
	TotalAmount float64 `json:"total_amount"`
	Percentage  float64 `json:"percentage"`
	Count       int     `json:"count"`
}

// AnomalyData flags a date whose value deviates from the expected baseline.
type AnomalyData struct {
	Date          time.Time   `json:"date"`
	Type          AnomalyType `json:"type"`
	ActualValue   float64     `json:"actual_value"`
	ExpectedValue float64     `json:"expected_value"`
	Deviation     float64     `json:"deviation"`
	Reason        string      `json:"reason"`
}

// MonthlyComparison compares the current month-to-date against the full previous month.
type MonthlyComparison struct {
	CurrentMonth     string  `json:"current_month"`
	CurrentTotal     float64 `json:"current_total"`
	PreviousMonth    string  `json:"previous_month"`
	PreviousTotal    float64 `json:"previous_total"`
	GrowthPercentage float64 `json:"growth_percentage"`
	GrowthAmount     float64 `json:"growth_amount"`
}

// ProjectionData extrapolates the running month from partial data.
type ProjectionData struct {
	CurrentMonthTotal    float64 `json:"current_month_total"`
	ProjectedMonthTotal  float64 `json:"projected_month_total"`
	DaysElapsed          int     `json:"days_elapsed"`
	TotalDaysInMonth     int     `json:"total_days_in_month"`
	DailyAverage         float64 `json:"daily_average"`
	ComparisonToPrevious float64 `json:"comparison_to_previous"`
	ActiveRevenueDays    int     `json:"active_revenue_days"`
	ActiveDayAverage     float64 `json:"active_day_average"`
}

// AnalyticsData is the top-level view state the mobile client renders.
// Error reports an upstream read failure; the facet slices stay empty in that
// case but empty facets alone never imply an error.
type AnalyticsData struct {
	Trend             []TrendData         `json:"trend"`
	DriverPerformance []DriverPerformance `json:"driver_performance"`
	VehicleROI        []VehicleROI        `json:"vehicle_roi"`
	DayOfWeek         []DayOfWeekAnalysis `json:"day_of_week"`
	ExpenseBreakdown  []ExpenseBreakdown  `json:"expense_breakdown"`
	Anomalies         []AnomalyData       `json:"anomalies"`
	MonthlyComparison *MonthlyComparison  `json:"monthly_comparison,omitempty"`
	Projection        *ProjectionData     `json:"projection,omitempty"`
	IsLoading         bool                `json:"is_loading"`
	Error             string              `json:"error,omitempty"`
}
