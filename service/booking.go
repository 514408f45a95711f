package service

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"domicare/constants"
	"domicare/helper"
	"domicare/model"
	"domicare/repository"

	"gorm.io/gorm"
)

const DefaultAvatar = "http://res.cloudinary.com/dnswn0tfq/image/upload/v1768915182/n7fg4oy5mgegoadnqpdr.png"

const (
	maxBookingsPerHour = 5
	defaultPageSize    = 20
	maxPageSize        = 100
)

// Mailer là notification sink của booking engine. Mọi hàm được gọi sau khi
// transaction commit, lỗi gửi mail được log và nuốt trong implementation.
type Mailer interface {
	SendGuestPassword(to, name, password string)
	SendBookingAccepted(to, name, productName string, bookingID uint, createdAt time.Time)
	SendBookingRejected(to, name, productName string, createdAt time.Time)
}

type BookingService interface {
	CreateBooking(input model.CreateBookingInput, currentUserEmail string) (*model.MiniBookingResponse, error)
	GetBooking(id uint) (*model.MiniBookingResponse, error)
	GetBookingsByUser(userID uint) ([]model.MiniBookingResponse, error)
	CancelBooking(id uint, actor *model.User) (*model.MiniBookingResponse, error)
	UpdateBooking(input model.UpdateBookingInput, actor *model.User) (*model.MiniBookingResponse, error)
	UpdateBookingStatus(input model.UpdateBookingStatusInput, actorEmail string) (*model.MiniBookingResponse, error)
	ListBookings(filter model.FilterBooking) (*model.BookingPage, error)
	CountBookingsByStatus(status model.BookingStatus, start, end time.Time) (int64, error)
	CountTotalBookings(start, end time.Time) (int64, error)
	TotalRevenue(start, end time.Time) (float64, error)
	TopSales(start, end time.Time, limit int) ([]model.TopSaleResponse, error)
}

type bookingService struct {
	db          repository.TxManager
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	mailer      Mailer
}

func NewBookingService(
	db repository.TxManager,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	mailer Mailer,
) BookingService {
	return &bookingService{
		db:          db,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		mailer:      mailer,
	}
}

func (s *bookingService) CreateBooking(input model.CreateBookingInput, currentUserEmail string) (*model.MiniBookingResponse, error) {
	log.Println("[BookingService] Creating new booking")

	if len(input.ProductIds) == 0 {
		return nil, fmt.Errorf("%w: product ids cannot be empty", ErrValidation)
	}

	var resp *model.MiniBookingResponse
	var notify func()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user *model.User
		guestEmail := strings.TrimSpace(input.GuestEmail)

		if guestEmail != "" {
			if strings.TrimSpace(input.Name) == "" {
				return fmt.Errorf("%w: name is required for guest booking", ErrValidation)
			}
			guest, guestNotify, err := s.resolveGuestUser(tx, guestEmail, input)
			if err != nil {
				return err
			}
			user = guest
			notify = guestNotify
		} else {
			if currentUserEmail == "" {
				return fmt.Errorf("%w: not found authenticated user", ErrUnauthorized)
			}
			existing, err := s.userRepo.FindByEmail(tx, currentUserEmail)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("%w: user with email %s not found", ErrNotFound, currentUserEmail)
			}
			user = existing
		}

		// Khóa dòng user: các check rate-limit và duplicate-pending của cùng
		// một user chạy tuần tự, hai request đồng thời không cùng lọt qua.
		if _, err := s.userRepo.FindByIDForUpdate(tx, user.ID); err != nil {
			return err
		}

		count, err := s.bookingRepo.CountByUserSince(tx, user.ID, time.Now().Add(-time.Hour))
		if err != nil {
			return err
		}
		if count >= maxBookingsPerHour {
			log.Printf("[BookingService] User %d has too many bookings in the last hour: %d", user.ID, count)
			return fmt.Errorf("%w: you have placed more than 5 orders in the last 1 hour, please try again later", ErrRateLimited)
		}

		if err := s.checkAlreadyPending(tx, user.ID, input); err != nil {
			return err
		}

		if input.StartTime.Before(time.Now()) {
			return fmt.Errorf("%w: start time cannot be in the past", ErrValidation)
		}

		products, err := s.productRepo.FindAllByIDs(tx, input.ProductIds)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return fmt.Errorf("%w: products not found", ErrNotFound)
		}

		total, err := calculateTotalPrice(products)
		if err != nil {
			return err
		}

		booking := &model.Booking{
			Address:       strings.TrimSpace(input.Address),
			Phone:         strings.TrimSpace(input.Phone),
			StartTime:     input.StartTime,
			IsPeriodic:    input.IsPeriodic,
			TotalPrice:    total,
			BookingStatus: model.BookingPending,
			UserId:        user.ID,
			CreatedBy:     user.Email,
			Products:      products,
		}
		if note := strings.TrimSpace(input.Note); note != "" {
			booking.Note = &note
		}

		// Booking và liên kết sản phẩm ghi trong cùng transaction
		if err := s.bookingRepo.Create(tx, booking); err != nil {
			return err
		}

		log.Printf("[BookingService] Booking created successfully with ID: %d for user %s", booking.ID, user.Email)

		booking.User = user
		r := booking.ToMiniResponse()
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Gửi mật khẩu cho guest sau khi commit, lỗi không ảnh hưởng booking
	if notify != nil {
		notify()
	}
	return resp, nil
}

// resolveGuestUser: email đã có và active → conflict; có nhưng inactive → dùng lại;
// chưa có → tạo user inactive với mật khẩu ngẫu nhiên rồi gửi qua email.
func (s *bookingService) resolveGuestUser(tx *gorm.DB, guestEmail string, input model.CreateBookingInput) (*model.User, func(), error) {
	existing, err := s.userRepo.FindByEmail(tx, guestEmail)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		if existing.IsActive {
			return nil, nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return existing, nil, nil
	}

	password, err := generateRandomPassword(12)
	if err != nil {
		return nil, nil, err
	}
	hash, err := helper.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	address := strings.TrimSpace(input.Address)
	avatar := DefaultAvatar
	user := &model.User{
		Email:            guestEmail,
		Password:         hash,
		Name:             &name,
		NameUnsigned:     helper.RemoveAccents(name),
		Phone:            &phone,
		Address:          &address,
		Avatar:           &avatar,
		IsActive:         false,
		IsEmailConfirmed: true,
	}
	if err := s.userRepo.Create(tx, user); err != nil {
		return nil, nil, err
	}
	if err := s.userRepo.AssignRole(tx, user, constants.ROLE_USER); err != nil {
		return nil, nil, err
	}

	log.Printf("[BookingService] Created inactive guest user %s", guestEmail)

	mailer := s.mailer
	notify := func() {
		if mailer != nil {
			mailer.SendGuestPassword(guestEmail, name, password)
		}
	}
	return user, notify, nil
}

// checkAlreadyPending: booking PENDING cũ cho sản phẩm đầu tiên, trùng địa chỉ
// HOẶC trùng giờ bắt đầu đều bị coi là duplicate.
func (s *bookingService) checkAlreadyPending(tx *gorm.DB, userID uint, input model.CreateBookingInput) error {
	existing, err := s.bookingRepo.FirstPendingByUserAndProduct(tx, userID, input.ProductIds[0])
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if existing.Address == strings.TrimSpace(input.Address) || existing.StartTime.Equal(input.StartTime) {
		log.Printf("[BookingService] User %d already has a pending booking for product %d", userID, input.ProductIds[0])
		return fmt.Errorf("%w for this product", ErrAlreadyPending)
	}
	return nil
}

func calculateTotalPrice(products []model.Product) (float64, error) {
	total := 0.0
	for _, p := range products {
		if p.Price == nil {
			return 0, fmt.Errorf("%w: product price cannot be null (product id: %d)", ErrValidation, p.ID)
		}
		total += p.PriceAfterDiscount()
	}
	return total, nil
}

func (s *bookingService) GetBooking(id uint) (*model.MiniBookingResponse, error) {
	booking, err := s.bookingRepo.FindByIDWithRelations(nil, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking not found with id: %d", ErrNotFound, id)
	}
	resp := booking.ToMiniResponse()
	return &resp, nil
}

func (s *bookingService) GetBookingsByUser(userID uint) ([]model.MiniBookingResponse, error) {
	user, err := s.userRepo.FindByID(nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found with id: %d", ErrNotFound, userID)
	}

	bookings, err := s.bookingRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	responses := make([]model.MiniBookingResponse, 0, len(bookings))
	for i := range bookings {
		bookings[i].User = user
		responses = append(responses, bookings[i].ToMiniResponse())
	}
	return responses, nil
}

// CancelBooking là soft delete: chuyển CANCELLED, không xóa dòng.
func (s *bookingService) CancelBooking(id uint, actor *model.User) (*model.MiniBookingResponse, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: not found authenticated user", ErrUnauthorized)
	}

	log.Printf("[BookingService] Attempting to cancel booking with ID: %d", id)

	var resp *model.MiniBookingResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// hủy chỉ cần kiểm tra chủ sở hữu và trạng thái, không cần preload
		booking, err := s.bookingRepo.FindByID(tx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return fmt.Errorf("%w: booking not found with id: %d", ErrNotFound, id)
		}

		isAdminOrSale := actor.HasRole(constants.ROLE_ADMIN) || actor.HasRole(constants.ROLE_SALE)
		if !isAdminOrSale && booking.UserId != actor.ID {
			log.Printf("[BookingService] User %d tried to cancel booking %d owned by user %d", actor.ID, id, booking.UserId)
			return fmt.Errorf("%w: you do not have permission to cancel this booking", ErrForbidden)
		}

		if booking.BookingStatus == model.BookingAccepted || booking.BookingStatus == model.BookingCancelled {
			return fmt.Errorf("%w: cannot cancel booking with status: %s", ErrInvalidState, booking.BookingStatus)
		}

		booking.BookingStatus = model.BookingCancelled
		booking.UpdatedBy = actor.Email
		if err := s.bookingRepo.Save(tx, booking); err != nil {
			return err
		}

		log.Printf("[BookingService] Booking with ID: %d has been cancelled", id)
		r := booking.ToMiniResponse()
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateBooking chỉ cho phép khi booking còn PENDING hoặc ACCEPTED.
func (s *bookingService) UpdateBooking(input model.UpdateBookingInput, actor *model.User) (*model.MiniBookingResponse, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: not found authenticated user", ErrUnauthorized)
	}

	log.Printf("[BookingService] Updating booking with ID: %d", input.BookingId)

	var resp *model.MiniBookingResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDWithRelations(tx, input.BookingId)
		if err != nil {
			return err
		}
		if booking == nil {
			return fmt.Errorf("%w: booking not found with id: %d", ErrNotFound, input.BookingId)
		}

		if booking.BookingStatus != model.BookingPending && booking.BookingStatus != model.BookingAccepted {
			return fmt.Errorf("%w: cannot update booking with status: %s", ErrInvalidState, booking.BookingStatus)
		}

		isAdminOrSale := actor.HasRole(constants.ROLE_ADMIN) || actor.HasRole(constants.ROLE_SALE)
		if !isAdminOrSale && booking.UserId != actor.ID {
			log.Printf("[BookingService] User %d tried to update booking %d owned by user %d", actor.ID, input.BookingId, booking.UserId)
			return fmt.Errorf("%w: you do not have permission to update this booking", ErrForbidden)
		}

		if input.StartTime != nil && input.StartTime.Before(time.Now()) {
			return fmt.Errorf("%w: start time cannot be in the past", ErrValidation)
		}

		if input.ProductId != nil {
			products, err := s.productRepo.FindAllByIDs(tx, []uint{*input.ProductId})
			if err != nil {
				return err
			}
			if len(products) == 0 {
				return fmt.Errorf("%w: product not found with id: %d", ErrNotFound, *input.ProductId)
			}
			if err := s.bookingRepo.ReplaceProducts(tx, booking, products); err != nil {
				return err
			}
			booking.Products = products
			total, err := calculateTotalPrice(products)
			if err != nil {
				return err
			}
			booking.TotalPrice = total
		}

		if input.Address != nil {
			booking.Address = strings.TrimSpace(*input.Address)
		}
		if input.Note != nil {
			note := strings.TrimSpace(*input.Note)
			booking.Note = &note
		}
		if input.Phone != nil {
			booking.Phone = strings.TrimSpace(*input.Phone)
		}
		if input.StartTime != nil {
			booking.StartTime = *input.StartTime
		}
		if input.IsPeriodic != nil {
			booking.IsPeriodic = *input.IsPeriodic
		}

		if input.Name != nil {
			customer := booking.User
			if customer == nil {
				return fmt.Errorf("%w: user not found for booking id: %d", ErrNotFound, input.BookingId)
			}
			name := strings.TrimSpace(*input.Name)
			customer.Name = &name
			customer.NameUnsigned = helper.RemoveAccents(name)
			if err := s.userRepo.Save(tx, customer); err != nil {
				return err
			}
		}

		if err := s.bookingRepo.Save(tx, booking); err != nil {
			return err
		}

		log.Printf("[BookingService] Booking updated successfully with ID: %d", input.BookingId)
		r := booking.ToMiniResponse()
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Request có kèm status mới thì chạy tiếp state machine trên chính booking đó
	if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
		return s.UpdateBookingStatus(model.UpdateBookingStatusInput{
			BookingId: input.BookingId,
			Status:    *input.Status,
		}, actor.Email)
	}
	return resp, nil
}

func (s *bookingService) UpdateBookingStatus(input model.UpdateBookingStatusInput, actorEmail string) (*model.MiniBookingResponse, error) {
	if actorEmail == "" {
		return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
	}

	newStatus, ok := model.ParseBookingStatus(strings.ToUpper(strings.TrimSpace(input.Status)))
	if !ok {
		return nil, fmt.Errorf("%w: invalid booking status: %s", ErrValidation, input.Status)
	}

	log.Printf("[Booking] Updating booking status for ID: %d to %s", input.BookingId, newStatus)

	var resp *model.MiniBookingResponse
	var notify func()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		actor, err := s.userRepo.FindByEmail(tx, actorEmail)
		if err != nil {
			return err
		}
		if actor == nil {
			return fmt.Errorf("%w: user not found with email: %s", ErrNotFound, actorEmail)
		}

		booking, err := s.bookingRepo.FindByIDWithRelations(tx, input.BookingId)
		if err != nil {
			return err
		}
		if booking == nil {
			return fmt.Errorf("%w: booking not found with id: %d", ErrNotFound, input.BookingId)
		}

		customer := booking.User
		if customer == nil {
			return fmt.Errorf("%w: customer not found for booking id: %d", ErrNotFound, input.BookingId)
		}
		// Owner tự hủy booking của mình: actor và customer là một dòng user
		if customer.ID == actor.ID {
			customer = actor
		}

		rule, err := lookupTransition(booking.BookingStatus, newStatus)
		if err != nil {
			return err
		}
		if err := rule.Authorize(actor, booking); err != nil {
			log.Printf("[Booking] User %s denied transition %s -> %s on booking %d", actorEmail, booking.BookingStatus, newStatus, booking.ID)
			return err
		}

		if rule.Noop {
			log.Printf("[Booking] Booking %d is already in %s status", booking.ID, booking.BookingStatus)
			r := booking.ToMiniResponse()
			resp = &r
			return nil
		}

		rule.Apply(booking, actor, customer)
		booking.UpdatedBy = actor.Email

		// Booking, bộ đếm của actor và bộ đếm của customer commit chung một transaction
		if err := s.bookingRepo.Save(tx, booking); err != nil {
			return err
		}
		if err := s.userRepo.Save(tx, actor); err != nil {
			return err
		}
		if customer != actor {
			if err := s.userRepo.Save(tx, customer); err != nil {
				return err
			}
		}

		if rule.Notify != nil && s.mailer != nil {
			bookingCopy := *booking
			customerCopy := *customer
			mailer := s.mailer
			ruleNotify := rule.Notify
			notify = func() { ruleNotify(mailer, &bookingCopy, &customerCopy) }
		}

		log.Printf("[Booking] Booking %d status updated successfully to %s by %s", booking.ID, newStatus, actorEmail)
		r := booking.ToMiniResponse()
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notify != nil {
		notify()
	}
	return resp, nil
}

func (s *bookingService) ListBookings(filter model.FilterBooking) (*model.BookingPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if filter.SearchName != "" {
		filter.SearchName = helper.RemoveAccents(strings.TrimSpace(filter.SearchName))
	}

	bookings, total, err := s.bookingRepo.FindPaginated(filter)
	if err != nil {
		return nil, err
	}

	data := make([]model.MiniBookingResponse, 0, len(bookings))
	for i := range bookings {
		data = append(data, bookings[i].ToMiniResponse())
	}

	totalPages := (total + int64(filter.PageSize) - 1) / int64(filter.PageSize)
	return &model.BookingPage{
		Meta: model.BookingPageMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		Data: data,
	}, nil
}

func validateDateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start date and end date cannot be null", ErrValidation)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start date must be before or equal to end date", ErrValidation)
	}
	return nil
}

func (s *bookingService) CountBookingsByStatus(status model.BookingStatus, start, end time.Time) (int64, error) {
	if err := validateDateRange(start, end); err != nil {
		return 0, err
	}
	return s.bookingRepo.CountByStatusBetween(status, start, end)
}

// CountTotalBookings đếm toàn bộ booking trong khoảng, trừ CANCELLED.
func (s *bookingService) CountTotalBookings(start, end time.Time) (int64, error) {
	if err := validateDateRange(start, end); err != nil {
		return 0, err
	}
	return s.bookingRepo.CountExcludingStatusBetween(model.BookingCancelled, start, end)
}

// TotalRevenue cộng total_price của các booking SUCCESS trong khoảng.
func (s *bookingService) TotalRevenue(start, end time.Time) (float64, error) {
	if err := validateDateRange(start, end); err != nil {
		return 0, err
	}
	return s.bookingRepo.SumRevenueBetween(model.BookingSuccess, start, end)
}

func (s *bookingService) TopSales(start, end time.Time, limit int) ([]model.TopSaleResponse, error) {
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.bookingRepo.TopRevenueSales(start, end, limit)
	if err != nil {
		return nil, err
	}

	topSales := make([]model.TopSaleResponse, 0, len(rows))
	for _, row := range rows {
		user, err := s.userRepo.FindByEmail(nil, row.Email)
		if err != nil {
			return nil, err
		}
		if user == nil {
			log.Printf("[BookingService] User not found with email: %s", row.Email)
			continue
		}
		name := "Unknown User"
		if user.Name != nil && *user.Name != "" {
			name = *user.Name
		}
		topSales = append(topSales, model.TopSaleResponse{
			ID:                         user.ID,
			Name:                       name,
			Email:                      row.Email,
			Avatar:                     user.Avatar,
			TotalSalePrice:             row.TotalRevenue,
			TotalSuccessBookingPercent: user.SaleSuccessPercent,
		})
	}
	return topSales, nil
}

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateRandomPassword(length int) (string, error) {
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordAlphabet))))
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
