package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"domicare/model"
	"domicare/repository"
	"domicare/utils"

	"github.com/redis/go-redis/v9"
)

const revenueChartCacheTTL = 10 * time.Minute

type DashboardService interface {
	GetOverview(start, end time.Time) (*model.OverviewResponse, error)
	GetRevenueChart(ctx context.Context, year int) (*model.ChartResponse, error)
	GetTopSales(start, end time.Time, limit int) ([]model.TopSaleResponse, error)
}

type dashboardService struct {
	bookingSvc  BookingService
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	cache       *redis.Client
}

func NewDashboardService(
	bookingSvc BookingService,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	cache *redis.Client,
) DashboardService {
	return &dashboardService{
		bookingSvc:  bookingSvc,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		cache:       cache,
	}
}

// GetOverview trả về số liệu kỳ này kèm phần trăm thay đổi so với kỳ trước,
// kỳ trước là cùng khoảng thời gian lùi lại đúng 1 tháng.
func (s *dashboardService) GetOverview(start, end time.Time) (*model.OverviewResponse, error) {
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	prevStart := start.AddDate(0, -1, 0)
	prevEnd := end.AddDate(0, -1, 0)

	totalBookings, err := s.bookingSvc.CountTotalBookings(start, end)
	if err != nil {
		return nil, err
	}
	prevTotalBookings, err := s.bookingSvc.CountTotalBookings(prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	revenue, err := s.bookingSvc.TotalRevenue(start, end)
	if err != nil {
		return nil, err
	}
	prevRevenue, err := s.bookingSvc.TotalRevenue(prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	newUsers, err := s.userRepo.CountCreatedBetween(start, end)
	if err != nil {
		return nil, err
	}
	prevNewUsers, err := s.userRepo.CountCreatedBetween(prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	successBookings, err := s.bookingSvc.CountBookingsByStatus(model.BookingSuccess, start, end)
	if err != nil {
		return nil, err
	}
	prevSuccessBookings, err := s.bookingSvc.CountBookingsByStatus(model.BookingSuccess, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	overview, err := s.buildBookingOverview(start, end, totalBookings, successBookings, revenue)
	if err != nil {
		return nil, err
	}

	return &model.OverviewResponse{
		DashboardSummary: map[string]model.DashboardSummary{
			"totalBookings": {
				Value:  strconv.FormatInt(totalBookings, 10),
				Change: formatChange(float64(totalBookings), float64(prevTotalBookings)),
			},
			"totalRevenue": {
				Value:  strconv.FormatFloat(revenue, 'f', 2, 64),
				Change: formatChange(revenue, prevRevenue),
			},
			"newUsers": {
				Value:  strconv.FormatInt(newUsers, 10),
				Change: formatChange(float64(newUsers), float64(prevNewUsers)),
			},
			"successBookings": {
				Value:  strconv.FormatInt(successBookings, 10),
				Change: formatChange(float64(successBookings), float64(prevSuccessBookings)),
			},
		},
		BookingOverview: *overview,
	}, nil
}

func (s *dashboardService) buildBookingOverview(start, end time.Time, total, success int64, revenue float64) (*model.BookingOverview, error) {
	pending, err := s.bookingSvc.CountBookingsByStatus(model.BookingPending, start, end)
	if err != nil {
		return nil, err
	}
	accepted, err := s.bookingSvc.CountBookingsByStatus(model.BookingAccepted, start, end)
	if err != nil {
		return nil, err
	}
	rejected, err := s.bookingSvc.CountBookingsByStatus(model.BookingRejected, start, end)
	if err != nil {
		return nil, err
	}
	failed, err := s.bookingSvc.CountBookingsByStatus(model.BookingFailed, start, end)
	if err != nil {
		return nil, err
	}

	return &model.BookingOverview{
		TotalBookings:         total,
		TotalPendingBookings:  pending,
		TotalAcceptedBookings: accepted,
		TotalRejectedBookings: rejected,
		TotalSuccessBookings:  success,
		TotalFailedBookings:   failed,
		TotalRevenueBookings:  revenue,
	}, nil
}

// GetRevenueChart trả về doanh thu 12 tháng của một năm, cache redis 10 phút.
func (s *dashboardService) GetRevenueChart(ctx context.Context, year int) (*model.ChartResponse, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	cacheKey := fmt.Sprintf("dashboard:revenue_chart:%d", year)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var resp model.ChartResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
		} else if err != redis.Nil {
			log.Println("[Dashboard] Failed to read revenue chart from cache:", err)
		}
	}

	totalRevenue := make(map[string]float64, 12)
	yearTotal := 0.0
	for month := 1; month <= 12; month++ {
		monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Second)
		sum, err := s.bookingRepo.SumRevenueBetween(model.BookingSuccess, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		totalRevenue[fmt.Sprintf("Th %02d", month)] = sum
		yearTotal += sum
	}

	prevStart := time.Date(year-1, 1, 1, 0, 0, 0, 0, time.UTC)
	prevEnd := time.Date(year-1, 12, 31, 23, 59, 59, 0, time.UTC)
	prevTotal, err := s.bookingRepo.SumRevenueBetween(model.BookingSuccess, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	resp := &model.ChartResponse{
		TotalRevenue: totalRevenue,
		GrowthRate:   calculateChange(yearTotal, prevTotal),
	}

	if s.cache != nil {
		payload, err := json.Marshal(resp)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, revenueChartCacheTTL).Err(); err != nil {
				log.Println("[Dashboard] Failed to cache revenue chart:", err)
			}
		}
	}
	return resp, nil
}

func (s *dashboardService) GetTopSales(start, end time.Time, limit int) ([]model.TopSaleResponse, error) {
	return s.bookingSvc.TopSales(start, end, limit)
}

// calculateChange: kỳ trước bằng 0 thì coi là tăng 100% nếu kỳ này có số liệu.
func calculateChange(current, previous float64) float64 {
	return math.Round(utils.CalculateGrowth(current, previous)*100) / 100
}

func formatChange(current, previous float64) string {
	return strconv.FormatFloat(calculateChange(current, previous), 'f', 2, 64) + "%"
}
