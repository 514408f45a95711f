package helper

import (
	"log"
	"time"

	"domicare/database"
	"domicare/model"
	"domicare/repository"

	"github.com/go-co-op/gocron/v2"
)

var statsScheduler gocron.Scheduler

// ReconcileSaleStats quét lại bảng bookings và tính lại bộ đếm của các sale user.
// Bộ đếm được cập nhật từng transition một, job này sửa các sai lệch tích lũy.
func ReconcileSaleStats() {
	log.Println("[CRON] ReconcileSaleStats triggered")

	db := database.DB

	sales, err := repository.NewUserRepository(db).FindAllSales()
	if err != nil {
		log.Printf("Lỗi khi quét sale user: %v", err)
		return
	}

	for _, sale := range sales {
		var handled, success int64
		if err := db.Model(&model.Booking{}).
			Where("sale_user_id = ?", sale.ID).
			Count(&handled).Error; err != nil {
			log.Printf("Lỗi đếm booking của sale '%s': %v", sale.Email, err)
			continue
		}
		if err := db.Model(&model.Booking{}).
			Where("sale_user_id = ? AND booking_status = ?", sale.ID, model.BookingSuccess).
			Count(&success).Error; err != nil {
			log.Printf("Lỗi đếm booking thành công của sale '%s': %v", sale.Email, err)
			continue
		}

		percent := 0.0
		if handled > 0 {
			percent = float64(success) / float64(handled) * 100
		}

		if sale.SaleTotalBookings != int(handled) ||
			sale.UserTotalSuccessBookings != int(success) ||
			sale.SaleSuccessPercent != percent {
			sale.SaleTotalBookings = int(handled)
			sale.UserTotalSuccessBookings = int(success)
			sale.SaleSuccessPercent = percent
			if err := db.Omit("Roles").Save(&sale).Error; err != nil {
				log.Printf("Lỗi cập nhật thống kê sale '%s': %v", sale.Email, err)
			} else {
				log.Printf("Cập nhật thống kê sale '%s': handled=%d success=%d", sale.Email, handled, success)
			}
		}
	}
}

func StartStatsScheduler() {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.FixedZone("ICT", 7*3600)),
	)
	if err != nil {
		log.Fatal(err)
	}

	statsScheduler = s

	_, err = s.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(0, 15, 0),
			),
		),
		gocron.NewTask(ReconcileSaleStats),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Println("✅ Sale stats scheduler started (00:15 ICT)")
}
