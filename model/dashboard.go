package model

type DashboardSummary struct {
	Value  string `json:"value"`
	Change string `json:"change"`
}

type BookingOverview struct {
	TotalBookings         int64   `json:"totalBookings"`
	TotalPendingBookings  int64   `json:"totalPendingBookings"`
	TotalAcceptedBookings int64   `json:"totalAcceptedBookings"`
	TotalRejectedBookings int64   `json:"totalRejectedBookings"`
	TotalSuccessBookings  int64   `json:"totalSuccessBookings"`
	TotalFailedBookings   int64   `json:"totalFailedBookings"`
	TotalRevenueBookings  float64 `json:"totalRevenueBookings"`
}

type OverviewResponse struct {
	DashboardSummary map[string]DashboardSummary `json:"dashboardSummary"`
	BookingOverview  BookingOverview             `json:"bookingOverview"`
}

type ChartResponse struct {
	TotalRevenue map[string]float64 `json:"totalRevenue"`
	GrowthRate   float64            `json:"growthRate"`
}

type TopSaleResponse struct {
	ID                         uint    `json:"id"`
	Name                       string  `json:"name"`
	Email                      string  `json:"email"`
	Avatar                     *string `json:"avatar"`
	TotalSalePrice             float64 `json:"totalSalePrice"`
	TotalSuccessBookingPercent float64 `json:"totalSuccessBookingPercent"`
}
