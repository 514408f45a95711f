package repository

import (
	"errors"
	"strings"
	"time"

	"domicare/model"

	"gorm.io/gorm"
)

type SaleRevenue struct {
	Email        string  `json:"email"`
	TotalRevenue float64 `json:"totalRevenue"`
}

type BookingRepository interface {
	Create(tx *gorm.DB, booking *model.Booking) error
	Save(tx *gorm.DB, booking *model.Booking) error
	FindByID(tx *gorm.DB, id uint) (*model.Booking, error)
	FindByIDWithRelations(tx *gorm.DB, id uint) (*model.Booking, error)
	FindByUserID(userID uint) ([]model.Booking, error)
	CountByUserSince(tx *gorm.DB, userID uint, since time.Time) (int64, error)
	FirstPendingByUserAndProduct(tx *gorm.DB, userID, productID uint) (*model.Booking, error)
	ReplaceProducts(tx *gorm.DB, booking *model.Booking, products []model.Product) error
	FindPaginated(filter model.FilterBooking) ([]model.Booking, int64, error)
	CountByStatusBetween(status model.BookingStatus, start, end time.Time) (int64, error)
	CountExcludingStatusBetween(status model.BookingStatus, start, end time.Time) (int64, error)
	SumRevenueBetween(status model.BookingStatus, start, end time.Time) (float64, error)
	TopRevenueSales(start, end time.Time, limit int) ([]SaleRevenue, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *bookingRepository) Create(tx *gorm.DB, booking *model.Booking) error {
	// gorm ghi booking và bảng booking_products trong cùng câu lệnh Create
	return r.conn(tx).Create(booking).Error
}

func (r *bookingRepository) Save(tx *gorm.DB, booking *model.Booking) error {
	return r.conn(tx).Omit("Products", "User", "SaleUser").Save(booking).Error
}

func (r *bookingRepository) FindByID(tx *gorm.DB, id uint) (*model.Booking, error) {
	var booking model.Booking
	if err := r.conn(tx).First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDWithRelations(tx *gorm.DB, id uint) (*model.Booking, error) {
	var booking model.Booking
	if err := r.conn(tx).
		Preload("User.Roles").
		Preload("SaleUser").
		Preload("Products").
		First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByUserID(userID uint) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := r.db.
		Preload("Products").
		Preload("SaleUser").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) CountByUserSince(tx *gorm.DB, userID uint, since time.Time) (int64, error) {
	var count int64
	err := r.conn(tx).Model(&model.Booking{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) FirstPendingByUserAndProduct(tx *gorm.DB, userID, productID uint) (*model.Booking, error) {
	var booking model.Booking
	err := r.conn(tx).
		Joins("JOIN booking_products bp ON bp.booking_id = bookings.id").
		Where("bookings.user_id = ? AND bp.product_id = ? AND bookings.booking_status = ?",
			userID, productID, model.BookingPending).
		Order("bookings.created_at desc").
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) ReplaceProducts(tx *gorm.DB, booking *model.Booking, products []model.Product) error {
	return r.conn(tx).Model(booking).Association("Products").Replace(products)
}

var bookingSortFields = map[string]string{
	"created_at":  "bookings.created_at",
	"updated_at":  "bookings.updated_at",
	"start_time":  "bookings.start_time",
	"total_price": "bookings.total_price",
}

func (r *bookingRepository) FindPaginated(filter model.FilterBooking) ([]model.Booking, int64, error) {
	query := r.db.Model(&model.Booking{}).
		Preload("User").
		Preload("SaleUser").
		Preload("Products")

	if filter.UserId != nil && *filter.UserId > 0 {
		query = query.Where("bookings.user_id = ?", *filter.UserId)
	}
	if filter.SaleId != nil && *filter.SaleId > 0 {
		query = query.Where("bookings.sale_user_id = ?", *filter.SaleId)
	}
	if filter.BookingStatus != "" {
		if filter.OtherStatus != "" {
			query = query.Where("bookings.booking_status = ? OR bookings.booking_status = ?",
				strings.ToUpper(filter.BookingStatus), strings.ToUpper(filter.OtherStatus))
		} else {
			query = query.Where("bookings.booking_status = ?", strings.ToUpper(filter.BookingStatus))
		}
	}
	if filter.SearchName != "" {
		query = query.
			Joins("JOIN users ON users.id = bookings.user_id").
			Where("users.name_unsigned LIKE ?", "%"+filter.SearchName+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField, ok := bookingSortFields[filter.SortBy]
	if !ok {
		sortField = "bookings.created_at"
	}
	direction := "desc"
	if strings.EqualFold(filter.SortDirection, "asc") {
		direction = "asc"
	}

	var bookings []model.Booking
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.
		Order(sortField + " " + direction).
		Limit(filter.PageSize).
		Offset(offset).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *bookingRepository) CountByStatusBetween(status model.BookingStatus, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Booking{}).
		Where("booking_status = ? AND created_at BETWEEN ? AND ?", status, start, end).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountExcludingStatusBetween(status model.BookingStatus, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Booking{}).
		Where("booking_status <> ? AND created_at BETWEEN ? AND ?", status, start, end).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) SumRevenueBetween(status model.BookingStatus, start, end time.Time) (float64, error) {
	var total float64
	err := r.db.Raw(`
        SELECT COALESCE(SUM(total_price), 0)
        FROM bookings
        WHERE booking_status = ?
          AND created_at BETWEEN ? AND ?
    `, status, start, end).Scan(&total).Error
	return total, err
}

func (r *bookingRepository) TopRevenueSales(start, end time.Time, limit int) ([]SaleRevenue, error) {
	var results []SaleRevenue
	err := r.db.Model(&model.Booking{}).
		Select("updated_by AS email, SUM(total_price) AS total_revenue").
		Where("booking_status = ? AND created_at BETWEEN ? AND ?", model.BookingSuccess, start, end).
		Group("updated_by").
		Order("total_revenue DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}
