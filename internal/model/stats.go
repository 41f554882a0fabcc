package model

// MonthlyRevenue is one row of the admin revenue report: payments summed by
// the month of the event date.
type MonthlyRevenue struct {
	Month       int     `json:"month"`
	TotalAmount float64 `json:"total_amount"`
}

type EventTypeCount struct {
	EventType EventType `json:"event_type"`
	Count     int       `json:"count"`
}

// DashboardStats is the aggregate block shown on the admin dashboard.
type DashboardStats struct {
	MonthlyRevenue []MonthlyRevenue `json:"monthly_revenue"`
	EventTypes     []EventTypeCount `json:"event_types"`
	TotalUsers     int              `json:"total_users"`
	TotalPaid      float64          `json:"total_paid"`
}
