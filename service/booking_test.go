package service

import (
	"errors"
	"testing"
	"time"

	"domicare/constants"
	"domicare/model"
	"domicare/repository"
	"domicare/utils"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func mustFloat(v float64) *float64 { return &v }

func customerUser() *model.User {
	name := "Nguyễn Văn An"
	return &model.User{
		DTO:      model.DTO{ID: 10},
		Email:    "an@example.com",
		Name:     &name,
		IsActive: true,
		Roles:    []model.Role{{Name: constants.ROLE_USER}},
	}
}

func saleUser() *model.User {
	name := "Trần Thị Bích"
	return &model.User{
		DTO:      model.DTO{ID: 20},
		Email:    "bich@domicare.vn",
		Name:     &name,
		IsActive: true,
		Roles:    []model.Role{{Name: constants.ROLE_SALE}},
	}
}

func sampleProducts() []model.Product {
	return []model.Product{
		{DTO: model.DTO{ID: 1}, Name: "Dọn dẹp nhà cửa", Price: mustFloat(100), Discount: mustFloat(10)},
		{DTO: model.DTO{ID: 2}, Name: "Nấu ăn gia đình", Price: mustFloat(200)},
	}
}

func createInput() model.CreateBookingInput {
	return model.CreateBookingInput{
		Phone:      "0912345678",
		Address:    "12 Lý Thường Kiệt, Hà Nội",
		ProductIds: []uint{1, 2},
		StartTime:  time.Now().Add(48 * time.Hour),
	}
}

// newBookingService dựng service với các mock mặc định cho đường thành công.
func newBookingService(bookingRepo *mockBookingRepo, userRepo *mockUserRepo, productRepo *mockProductRepo, mailer *mockMailer) BookingService {
	if bookingRepo.createFn == nil {
		bookingRepo.createFn = func(_ *gorm.DB, b *model.Booking) error {
			b.ID = 99
			return nil
		}
	}
	if bookingRepo.saveFn == nil {
		bookingRepo.saveFn = func(_ *gorm.DB, _ *model.Booking) error { return nil }
	}
	if bookingRepo.countByUserSinceFn == nil {
		bookingRepo.countByUserSinceFn = func(_ *gorm.DB, _ uint, _ time.Time) (int64, error) { return 0, nil }
	}
	if bookingRepo.firstPendingByUserAndProductFn == nil {
		bookingRepo.firstPendingByUserAndProductFn = func(_ *gorm.DB, _, _ uint) (*model.Booking, error) { return nil, nil }
	}
	if userRepo.saveFn == nil {
		userRepo.saveFn = func(_ *gorm.DB, _ *model.User) error { return nil }
	}
	if userRepo.findByIDForUpdateFn == nil {
		userRepo.findByIDForUpdateFn = func(_ *gorm.DB, id uint) (*model.User, error) {
			return &model.User{DTO: model.DTO{ID: id}}, nil
		}
	}
	if productRepo.findAllByIDsFn == nil {
		productRepo.findAllByIDsFn = func(_ *gorm.DB, _ []uint) ([]model.Product, error) {
			return sampleProducts(), nil
		}
	}
	return NewBookingService(&mockTx{}, bookingRepo, userRepo, productRepo, mailer)
}

func TestCreateBooking_AuthenticatedUser(t *testing.T) {
	customer := customerUser()
	var created *model.Booking

	bookingRepo := &mockBookingRepo{
		createFn: func(_ *gorm.DB, b *model.Booking) error {
			b.ID = 99
			created = b
			return nil
		},
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, email string) (*model.User, error) {
			assert.Equal(t, customer.Email, email)
			return customer, nil
		},
	}
	mailer := &mockMailer{}
	svc := newBookingService(bookingRepo, userRepo, &mockProductRepo{}, mailer)

	resp, err := svc.CreateBooking(createInput(), customer.Email)

	assert.NoError(t, err)
	assert.Equal(t, uint(99), resp.ID)
	assert.Equal(t, model.BookingPending, resp.BookingStatus)
	// 100 giảm 10% = 90, cộng 200 không giảm
	assert.Equal(t, float64(290), created.TotalPrice)
	assert.Equal(t, customer.ID, created.UserId)
	assert.Equal(t, customer.Email, created.CreatedBy)
	assert.Empty(t, mailer.sent)
}

func TestCreateBooking_NoIdentity(t *testing.T) {
	svc := newBookingService(&mockBookingRepo{}, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(createInput(), "")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateBooking_RateLimited(t *testing.T) {
	customer := customerUser()
	bookingRepo := &mockBookingRepo{
		countByUserSinceFn: func(_ *gorm.DB, userID uint, since time.Time) (int64, error) {
			assert.Equal(t, customer.ID, userID)
			assert.WithinDuration(t, time.Now().Add(-time.Hour), since, 5*time.Second)
			return 5, nil
		},
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return customer, nil },
	}
	svc := newBookingService(bookingRepo, userRepo, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(createInput(), customer.Email)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 429, HTTPStatus(err))
}

func TestCreateBooking_FourRecentBookingsAllowed(t *testing.T) {
	customer := customerUser()
	bookingRepo := &mockBookingRepo{
		countByUserSinceFn: func(_ *gorm.DB, _ uint, _ time.Time) (int64, error) { return 4, nil },
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return customer, nil },
	}
	svc := newBookingService(bookingRepo, userRepo, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(createInput(), customer.Email)

	assert.NoError(t, err)
}

func TestCreateBooking_DuplicatePendingSameAddress(t *testing.T) {
	customer := customerUser()
	input := createInput()
	bookingRepo := &mockBookingRepo{
		firstPendingByUserAndProductFn: func(_ *gorm.DB, userID, productID uint) (*model.Booking, error) {
			assert.Equal(t, input.ProductIds[0], productID)
			return &model.Booking{
				Address:   input.Address,
				StartTime: input.StartTime.Add(24 * time.Hour),
			}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return customer, nil },
	}
	svc := newBookingService(bookingRepo, userRepo, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(input, customer.Email)

	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrAlreadyPending)
}

func TestCreateBooking_DuplicatePendingSameStartTime(t *testing.T) {
	customer := customerUser()
	input := createInput()
	bookingRepo := &mockBookingRepo{
		firstPendingByUserAndProductFn: func(_ *gorm.DB, _, _ uint) (*model.Booking, error) {
			return &model.Booking{
				Address:   "địa chỉ khác hẳn",
				StartTime: input.StartTime,
			}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return customer, nil },
	}
	svc := newBookingService(bookingRepo, userRepo, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(input, customer.Email)

	assert.ErrorIs(t, err, ErrAlreadyPending)
}

func TestCreateBooking_PendingDifferentAddressAndTimeAllowed(t *testing.T) {
	customer := customerUser()
	input := createInput()
	bookingRepo := &mockBookingRepo{
		firstPendingByUserAndProductFn: func(_ *gorm.DB, _, _ uint) (*model.Booking, error) {
			return &model.Booking{
				Address:   "địa chỉ khác hẳn",
				StartTime: input.StartTime.Add(24 * time.Hour),
			}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return customer, nil },
	}
	svc := newBookingService(bookingRepo, userRepo, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(input, customer.Email)

	assert.NoError(t, err)
}

func TestCreateBooking_StartTimeInPast(t *testing.T) {
	customer := customerUser()
	input := createInput()
	input.StartTime = time.Now().Add(-time.Hour)

	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return customer, nil },
	}
	svc := newBookingService(&mockBookingRepo{}, userRepo, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(input, customer.Email)

	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBooking_ProductsNotFound(t *testing.T) {
	customer := customerUser()
	productRepo := &mockProductRepo{
		findAllByIDsFn: func(_ *gorm.DB, _ []uint) ([]model.Product, error) { return nil, nil },
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return customer, nil },
	}
	svc := newBookingService(&mockBookingRepo{}, userRepo, productRepo, &mockMailer{})

	_, err := svc.CreateBooking(createInput(), customer.Email)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBooking_NilPriceRejected(t *testing.T) {
	customer := customerUser()
	productRepo := &mockProductRepo{
		findAllByIDsFn: func(_ *gorm.DB, _ []uint) ([]model.Product, error) {
			return []model.Product{{DTO: model.DTO{ID: 1}, Name: "Dịch vụ chưa có giá"}}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return customer, nil },
	}
	svc := newBookingService(&mockBookingRepo{}, userRepo, productRepo, &mockMailer{})

	_, err := svc.CreateBooking(createInput(), customer.Email)

	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "price")
}

func TestCreateBooking_EmptyProductIds(t *testing.T) {
	input := createInput()
	input.ProductIds = nil
	svc := newBookingService(&mockBookingRepo{}, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(input, "an@example.com")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBooking_GuestActiveEmailConflict(t *testing.T) {
	input := createInput()
	input.Name = "Khách Mới"
	input.GuestEmail = "an@example.com"

	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return customerUser(), nil },
	}
	svc := newBookingService(&mockBookingRepo{}, userRepo, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(input, "")

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 409, HTTPStatus(err))
}

func TestCreateBooking_GuestInactiveReused(t *testing.T) {
	inactive := customerUser()
	inactive.IsActive = false

	input := createInput()
	input.Name = "Nguyễn Văn An"
	input.GuestEmail = inactive.Email

	var createdUsers int
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return inactive, nil },
		createFn: func(_ *gorm.DB, _ *model.User) error {
			createdUsers++
			return nil
		},
	}
	mailer := &mockMailer{}
	svc := newBookingService(&mockBookingRepo{}, userRepo, &mockProductRepo{}, mailer)

	resp, err := svc.CreateBooking(input, "")

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Zero(t, createdUsers)
	// user có sẵn thì không gửi lại mật khẩu
	assert.Empty(t, mailer.sent)
}

func TestCreateBooking_GuestNewUserCreated(t *testing.T) {
	input := createInput()
	input.Name = "Phạm Thị Cúc"
	input.GuestEmail = "cuc@example.com"

	var created *model.User
	var assignedRole string
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return nil, nil },
		createFn: func(_ *gorm.DB, u *model.User) error {
			u.ID = 33
			created = u
			return nil
		},
		assignRoleFn: func(_ *gorm.DB, u *model.User, roleName string) error {
			assignedRole = roleName
			return nil
		},
	}
	mailer := &mockMailer{}
	svc := newBookingService(&mockBookingRepo{}, userRepo, &mockProductRepo{}, mailer)

	resp, err := svc.CreateBooking(input, "")

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.NotNil(t, created)
	assert.False(t, created.IsActive)
	assert.Equal(t, "pham thi cuc", created.NameUnsigned)
	assert.NotEmpty(t, created.Password)
	assert.Equal(t, constants.ROLE_USER, assignedRole)
	// mật khẩu gửi sau khi commit
	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, "guest_password", mailer.sent[0].Kind)
	assert.Equal(t, "cuc@example.com", mailer.sent[0].To)
}

func TestCreateBooking_GuestWithoutName(t *testing.T) {
	input := createInput()
	input.GuestEmail = "cuc@example.com"

	svc := newBookingService(&mockBookingRepo{}, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(input, "")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancelBooking_Owner(t *testing.T) {
	customer := customerUser()
	var saved *model.Booking
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(_ *gorm.DB, id uint) (*model.Booking, error) {
			return &model.Booking{DTO: model.DTO{ID: id}, UserId: customer.ID, BookingStatus: model.BookingPending}, nil
		},
		saveFn: func(_ *gorm.DB, b *model.Booking) error {
			saved = b
			return nil
		},
	}
	svc := newBookingService(bookingRepo, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	resp, err := svc.CancelBooking(7, customer)

	assert.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, resp.BookingStatus)
	assert.Equal(t, customer.Email, saved.UpdatedBy)
}

func TestCancelBooking_StrangerForbidden(t *testing.T) {
	stranger := &model.User{DTO: model.DTO{ID: 777}, Email: "khac@example.com", Roles: []model.Role{{Name: constants.ROLE_USER}}}
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(_ *gorm.DB, id uint) (*model.Booking, error) {
			return &model.Booking{DTO: model.DTO{ID: id}, UserId: 10, BookingStatus: model.BookingPending}, nil
		},
	}
	svc := newBookingService(bookingRepo, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CancelBooking(7, stranger)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelBooking_AcceptedBlocked(t *testing.T) {
	customer := customerUser()
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(_ *gorm.DB, id uint) (*model.Booking, error) {
			return &model.Booking{DTO: model.DTO{ID: id}, UserId: customer.ID, BookingStatus: model.BookingAccepted}, nil
		},
	}
	svc := newBookingService(bookingRepo, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CancelBooking(7, customer)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateBooking_TerminalStatusBlocked(t *testing.T) {
	customer := customerUser()
	bookingRepo := &mockBookingRepo{
		findByIDWithRelationsFn: func(_ *gorm.DB, id uint) (*model.Booking, error) {
			return &model.Booking{DTO: model.DTO{ID: id}, UserId: customer.ID, BookingStatus: model.BookingSuccess, User: customer}, nil
		},
	}
	svc := newBookingService(bookingRepo, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	_, err := svc.UpdateBooking(model.UpdateBookingInput{BookingId: 7, Address: utils.StringPtr("chỗ mới")}, customer)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateBooking_ReplaceProductRecomputesPrice(t *testing.T) {
	customer := customerUser()
	booking := &model.Booking{
		DTO:           model.DTO{ID: 7},
		UserId:        customer.ID,
		BookingStatus: model.BookingPending,
		User:          customer,
		TotalPrice:    290,
	}
	var replaced []model.Product
	bookingRepo := &mockBookingRepo{
		findByIDWithRelationsFn: func(_ *gorm.DB, _ uint) (*model.Booking, error) { return booking, nil },
		replaceProductsFn: func(_ *gorm.DB, _ *model.Booking, products []model.Product) error {
			replaced = products
			return nil
		},
	}
	productRepo := &mockProductRepo{
		findAllByIDsFn: func(_ *gorm.DB, ids []uint) ([]model.Product, error) {
			assert.Equal(t, []uint{5}, ids)
			return []model.Product{{DTO: model.DTO{ID: 5}, Name: "Trông trẻ", Price: mustFloat(500), Discount: mustFloat(20)}}, nil
		},
	}
	svc := newBookingService(bookingRepo, &mockUserRepo{}, productRepo, &mockMailer{})

	resp, err := svc.UpdateBooking(model.UpdateBookingInput{BookingId: 7, ProductId: utils.Ptr(uint(5))}, customer)

	assert.NoError(t, err)
	assert.Len(t, replaced, 1)
	assert.Equal(t, float64(400), resp.TotalPrice)
}

func TestUpdateBooking_NameUpdatesCustomer(t *testing.T) {
	customer := customerUser()
	booking := &model.Booking{
		DTO:           model.DTO{ID: 7},
		UserId:        customer.ID,
		BookingStatus: model.BookingPending,
		User:          customer,
	}
	var savedUser *model.User
	bookingRepo := &mockBookingRepo{
		findByIDWithRelationsFn: func(_ *gorm.DB, _ uint) (*model.Booking, error) { return booking, nil },
	}
	userRepo := &mockUserRepo{
		saveFn: func(_ *gorm.DB, u *model.User) error {
			savedUser = u
			return nil
		},
	}
	svc := newBookingService(bookingRepo, userRepo, &mockProductRepo{}, &mockMailer{})

	_, err := svc.UpdateBooking(model.UpdateBookingInput{BookingId: 7, Name: utils.StringPtr("Lê Hữu Đức")}, customer)

	assert.NoError(t, err)
	assert.Equal(t, "Lê Hữu Đức", *savedUser.Name)
	assert.Equal(t, "le huu duc", savedUser.NameUnsigned)
}

func TestListBookings_ClampsAndTotalPages(t *testing.T) {
	var gotFilter model.FilterBooking
	bookingRepo := &mockBookingRepo{
		findPaginatedFn: func(filter model.FilterBooking) ([]model.Booking, int64, error) {
			gotFilter = filter
			return []model.Booking{{DTO: model.DTO{ID: 1}}}, 41, nil
		},
	}
	svc := newBookingService(bookingRepo, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	page, err := svc.ListBookings(model.FilterBooking{Page: 0, PageSize: 1000, SearchName: "  Nguyễn Văn  "})

	assert.NoError(t, err)
	assert.Equal(t, 1, gotFilter.Page)
	assert.Equal(t, 100, gotFilter.PageSize)
	assert.Equal(t, "nguyen van", gotFilter.SearchName)
	assert.Equal(t, int64(41), page.Meta.Total)
	// 41 bản ghi, 100 mỗi trang → 1 trang
	assert.Equal(t, int64(1), page.Meta.TotalPages)
}

func TestListBookings_TotalPagesRoundsUp(t *testing.T) {
	bookingRepo := &mockBookingRepo{
		findPaginatedFn: func(filter model.FilterBooking) ([]model.Booking, int64, error) {
			return nil, 41, nil
		},
	}
	svc := newBookingService(bookingRepo, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	page, err := svc.ListBookings(model.FilterBooking{Page: 2, PageSize: 20})

	assert.NoError(t, err)
	assert.Equal(t, int64(3), page.Meta.TotalPages)
}

func TestAggregates_InvalidDateRange(t *testing.T) {
	svc := newBookingService(&mockBookingRepo{}, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})
	now := time.Now()

	_, err := svc.CountTotalBookings(time.Time{}, now)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.TotalRevenue(now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CountBookingsByStatus(model.BookingSuccess, now, time.Time{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTopSales_SkipsMissingUsers(t *testing.T) {
	sale := saleUser()
	sale.SaleSuccessPercent = 75

	bookingRepo := &mockBookingRepo{
		topRevenueSalesFn: func(_, _ time.Time, limit int) ([]repository.SaleRevenue, error) {
			return []repository.SaleRevenue{
				{Email: sale.Email, TotalRevenue: 1200},
				{Email: "ghost@domicare.vn", TotalRevenue: 800},
			}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, email string) (*model.User, error) {
			if email == sale.Email {
				return sale, nil
			}
			return nil, nil
		},
	}
	svc := newBookingService(bookingRepo, userRepo, &mockProductRepo{}, &mockMailer{})

	now := time.Now()
	topSales, err := svc.TopSales(now.AddDate(0, -1, 0), now, 5)

	assert.NoError(t, err)
	assert.Len(t, topSales, 1)
	assert.Equal(t, sale.Email, topSales[0].Email)
	assert.Equal(t, float64(1200), topSales[0].TotalSalePrice)
	assert.Equal(t, float64(75), topSales[0].TotalSuccessBookingPercent)
}

func TestGetBooking_NotFound(t *testing.T) {
	bookingRepo := &mockBookingRepo{
		findByIDWithRelationsFn: func(_ *gorm.DB, _ uint) (*model.Booking, error) { return nil, nil },
	}
	svc := newBookingService(bookingRepo, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	_, err := svc.GetBooking(404)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 404, HTTPStatus(err))
}

func TestGetBookingsByUser_UserMissing(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(_ *gorm.DB, _ uint) (*model.User, error) { return nil, nil },
	}
	svc := newBookingService(&mockBookingRepo{}, userRepo, &mockProductRepo{}, &mockMailer{})

	_, err := svc.GetBookingsByUser(404)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBooking_TransactionErrorPropagates(t *testing.T) {
	customer := customerUser()
	bookingRepo := &mockBookingRepo{
		createFn: func(_ *gorm.DB, _ *model.Booking) error { return errors.New("db down") },
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, _ string) (*model.User, error) { return customer, nil },
	}
	svc := newBookingService(bookingRepo, userRepo, &mockProductRepo{}, &mockMailer{})

	_, err := svc.CreateBooking(createInput(), customer.Email)

	assert.Error(t, err)
	assert.Equal(t, 500, HTTPStatus(err))
}
