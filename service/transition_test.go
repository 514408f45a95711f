package service

import (
	"testing"
	"time"

	"domicare/constants"
	"domicare/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestLookupTransition_TerminalStatesRejectEverything(t *testing.T) {
	terminals := []model.BookingStatus{
		model.BookingRejected,
		model.BookingCancelled,
		model.BookingSuccess,
		model.BookingFailed,
	}
	targets := []model.BookingStatus{
		model.BookingPending,
		model.BookingAccepted,
		model.BookingRejected,
		model.BookingCancelled,
		model.BookingSuccess,
		model.BookingFailed,
	}

	for _, from := range terminals {
		for _, to := range targets {
			_, err := lookupTransition(from, to)
			assert.ErrorIs(t, err, ErrInvalidState, "from %s to %s", from, to)
		}
	}
}

func TestLookupTransition_UnknownTarget(t *testing.T) {
	_, err := lookupTransition(model.BookingPending, model.BookingSuccess)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = lookupTransition(model.BookingAccepted, model.BookingRejected)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = lookupTransition(model.BookingAccepted, model.BookingCancelled)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecalcSuccessPercent(t *testing.T) {
	sale := saleUser()
	sale.SaleTotalBookings = 4
	sale.UserTotalSuccessBookings = 3
	recalcSuccessPercent(sale)
	assert.Equal(t, float64(75), sale.SaleSuccessPercent)

	sale.SaleTotalBookings = 0
	recalcSuccessPercent(sale)
	assert.Equal(t, float64(0), sale.SaleSuccessPercent)
}

// statusService dựng service với booking có sẵn để test UpdateBookingStatus end-to-end.
func statusService(t *testing.T, booking *model.Booking, actor *model.User, mailer *mockMailer) (BookingService, *[]string) {
	t.Helper()
	savedUsers := []string{}

	bookingRepo := &mockBookingRepo{
		findByIDWithRelationsFn: func(_ *gorm.DB, id uint) (*model.Booking, error) {
			assert.Equal(t, booking.ID, id)
			return booking, nil
		},
		saveFn: func(_ *gorm.DB, _ *model.Booking) error { return nil },
	}
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ *gorm.DB, email string) (*model.User, error) {
			if email == actor.Email {
				return actor, nil
			}
			return nil, nil
		},
		saveFn: func(_ *gorm.DB, u *model.User) error {
			savedUsers = append(savedUsers, u.Email)
			return nil
		},
	}
	svc := NewBookingService(&mockTx{}, bookingRepo, userRepo, &mockProductRepo{}, mailer)
	return svc, &savedUsers
}

func pendingBooking(customer *model.User) *model.Booking {
	return &model.Booking{
		DTO:           model.DTO{ID: 7, CreatedAt: time.Now().Add(-time.Hour)},
		Address:       "12 Lý Thường Kiệt, Hà Nội",
		BookingStatus: model.BookingPending,
		UserId:        customer.ID,
		User:          customer,
		Products:      []model.Product{{DTO: model.DTO{ID: 1}, Name: "Dọn dẹp nhà cửa", Price: mustFloat(100)}},
	}
}

func acceptedBooking(customer, sale *model.User) *model.Booking {
	b := pendingBooking(customer)
	b.BookingStatus = model.BookingAccepted
	b.SaleUserId = &sale.ID
	b.SaleUser = sale
	return b
}

func TestUpdateBookingStatus_AcceptAssignsSale(t *testing.T) {
	customer := customerUser()
	sale := saleUser()
	booking := pendingBooking(customer)
	mailer := &mockMailer{}
	svc, _ := statusService(t, booking, sale, mailer)

	resp, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "ACCEPTED"}, sale.Email)

	assert.NoError(t, err)
	assert.Equal(t, model.BookingAccepted, resp.BookingStatus)
	assert.Equal(t, sale.ID, *booking.SaleUserId)
	assert.Equal(t, 1, sale.SaleTotalBookings)
	assert.Equal(t, sale.Email, booking.UpdatedBy)
	// mail xác nhận gửi cho customer sau commit
	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, "accepted", mailer.sent[0].Kind)
	assert.Equal(t, customer.Email, mailer.sent[0].To)
}

func TestUpdateBookingStatus_AcceptLowercaseInput(t *testing.T) {
	customer := customerUser()
	sale := saleUser()
	booking := pendingBooking(customer)
	svc, _ := statusService(t, booking, sale, &mockMailer{})

	resp, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "accepted"}, sale.Email)

	assert.NoError(t, err)
	assert.Equal(t, model.BookingAccepted, resp.BookingStatus)
}

func TestUpdateBookingStatus_AcceptByNonSaleForbidden(t *testing.T) {
	customer := customerUser()
	booking := pendingBooking(customer)
	svc, _ := statusService(t, booking, customer, &mockMailer{})

	_, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "ACCEPTED"}, customer.Email)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, model.BookingPending, booking.BookingStatus)
}

func TestUpdateBookingStatus_RejectSendsMail(t *testing.T) {
	customer := customerUser()
	sale := saleUser()
	booking := pendingBooking(customer)
	mailer := &mockMailer{}
	svc, _ := statusService(t, booking, sale, mailer)

	resp, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "REJECTED"}, sale.Email)

	assert.NoError(t, err)
	assert.Equal(t, model.BookingRejected, resp.BookingStatus)
	// reject không tăng bộ đếm của sale
	assert.Equal(t, 0, sale.SaleTotalBookings)
	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, "rejected", mailer.sent[0].Kind)
}

func TestUpdateBookingStatus_OwnerCancelsSavedOnce(t *testing.T) {
	customer := customerUser()
	booking := pendingBooking(customer)
	svc, savedUsers := statusService(t, booking, customer, &mockMailer{})

	resp, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "CANCELLED"}, customer.Email)

	assert.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, resp.BookingStatus)
	// actor và customer là cùng một user → chỉ save một lần
	assert.Equal(t, []string{customer.Email}, *savedUsers)
}

func TestUpdateBookingStatus_StrangerCannotCancel(t *testing.T) {
	customer := customerUser()
	stranger := &model.User{DTO: model.DTO{ID: 777}, Email: "khac@example.com", Roles: []model.Role{{Name: constants.ROLE_USER}}}
	booking := pendingBooking(customer)
	svc, _ := statusService(t, booking, stranger, &mockMailer{})

	_, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "CANCELLED"}, stranger.Email)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateBookingStatus_PendingNoop(t *testing.T) {
	customer := customerUser()
	sale := saleUser()
	booking := pendingBooking(customer)
	mailer := &mockMailer{}
	svc, savedUsers := statusService(t, booking, sale, mailer)

	resp, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "PENDING"}, sale.Email)

	assert.NoError(t, err)
	assert.Equal(t, model.BookingPending, resp.BookingStatus)
	assert.Empty(t, *savedUsers)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, booking.UpdatedBy)
}

func TestUpdateBookingStatus_SuccessUpdatesCounters(t *testing.T) {
	customer := customerUser()
	sale := saleUser()
	sale.SaleTotalBookings = 2
	sale.UserTotalSuccessBookings = 1
	booking := acceptedBooking(customer, sale)
	svc, savedUsers := statusService(t, booking, sale, &mockMailer{})

	resp, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "SUCCESS"}, sale.Email)

	assert.NoError(t, err)
	assert.Equal(t, model.BookingSuccess, resp.BookingStatus)
	assert.Equal(t, 2, sale.UserTotalSuccessBookings)
	assert.Equal(t, 1, customer.UserTotalSuccessBookings)
	assert.Equal(t, float64(100), sale.SaleSuccessPercent)
	// sale và customer là hai dòng khác nhau → hai lần save
	assert.ElementsMatch(t, []string{sale.Email, customer.Email}, *savedUsers)
}

func TestUpdateBookingStatus_FailedUpdatesCustomerCounter(t *testing.T) {
	customer := customerUser()
	sale := saleUser()
	sale.SaleTotalBookings = 4
	sale.UserTotalSuccessBookings = 1
	booking := acceptedBooking(customer, sale)
	svc, _ := statusService(t, booking, sale, &mockMailer{})

	resp, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "FAILED"}, sale.Email)

	assert.NoError(t, err)
	assert.Equal(t, model.BookingFailed, resp.BookingStatus)
	assert.Equal(t, 1, customer.UserTotalFailedBookings)
	assert.Equal(t, 0, sale.UserTotalFailedBookings)
	assert.Equal(t, float64(25), sale.SaleSuccessPercent)
}

func TestUpdateBookingStatus_OtherSaleCannotComplete(t *testing.T) {
	customer := customerUser()
	handler := saleUser()
	other := &model.User{DTO: model.DTO{ID: 21}, Email: "sale2@domicare.vn", Roles: []model.Role{{Name: constants.ROLE_SALE}}}
	booking := acceptedBooking(customer, handler)
	svc, _ := statusService(t, booking, other, &mockMailer{})

	_, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "SUCCESS"}, other.Email)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "another sale user")
}

func TestUpdateBookingStatus_AcceptedNoopByHandler(t *testing.T) {
	customer := customerUser()
	sale := saleUser()
	booking := acceptedBooking(customer, sale)
	svc, savedUsers := statusService(t, booking, sale, &mockMailer{})

	resp, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "ACCEPTED"}, sale.Email)

	assert.NoError(t, err)
	assert.Equal(t, model.BookingAccepted, resp.BookingStatus)
	assert.Empty(t, *savedUsers)
}

func TestUpdateBookingStatus_TerminalBookingRejected(t *testing.T) {
	customer := customerUser()
	sale := saleUser()
	booking := pendingBooking(customer)
	booking.BookingStatus = model.BookingCancelled
	svc, _ := statusService(t, booking, sale, &mockMailer{})

	_, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "ACCEPTED"}, sale.Email)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateBookingStatus_InvalidStatusString(t *testing.T) {
	svc := NewBookingService(&mockTx{}, &mockBookingRepo{}, &mockUserRepo{}, &mockProductRepo{}, &mockMailer{})

	_, err := svc.UpdateBookingStatus(model.UpdateBookingStatusInput{BookingId: 7, Status: "DONE"}, "bich@domicare.vn")

	assert.ErrorIs(t, err, ErrValidation)
}
