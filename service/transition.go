package service

import (
	"fmt"

	"domicare/constants"
	"domicare/model"
)

// Bảng chuyển trạng thái booking: (from, to) → rule. Mỗi rule gồm check quyền,
// side effect trên booking/bộ đếm, và notification gửi sau khi commit.
// REJECTED, CANCELLED, SUCCESS, FAILED là trạng thái cuối, không có dòng nào đi ra.

type transitionKey struct {
	From model.BookingStatus
	To   model.BookingStatus
}

type transitionRule struct {
	Authorize func(actor *model.User, booking *model.Booking) error
	// Apply chạy trong transaction; cập nhật booking, actor và customer.
	Apply func(booking *model.Booking, actor, customer *model.User)
	// Noop: trạng thái không đổi, chỉ ghi log.
	Noop bool
	// Notify chạy sau commit, best-effort.
	Notify func(m Mailer, booking *model.Booking, customer *model.User)
}

func requireSale(action string) func(actor *model.User, booking *model.Booking) error {
	return func(actor *model.User, _ *model.Booking) error {
		if !actor.HasRole(constants.ROLE_SALE) {
			return fmt.Errorf("%w: only SALE users can %s bookings", ErrForbidden, action)
		}
		return nil
	}
}

func requireOwnerOrSale(actor *model.User, booking *model.Booking) error {
	if !actor.HasRole(constants.ROLE_SALE) && booking.UserId != actor.ID {
		return fmt.Errorf("%w: you can only cancel your own bookings", ErrForbidden)
	}
	return nil
}

// requireHandlingSale: chỉ sale đã nhận booking mới được kết thúc nó.
func requireHandlingSale(actor *model.User, booking *model.Booking) error {
	if !actor.HasRole(constants.ROLE_SALE) {
		return fmt.Errorf("%w: only SALE users can complete bookings", ErrForbidden)
	}
	if booking.SaleUserId != nil && *booking.SaleUserId != actor.ID {
		return fmt.Errorf("%w: this booking has already been handled by another sale user", ErrForbidden)
	}
	return nil
}

func firstProductName(booking *model.Booking) string {
	if len(booking.Products) > 0 {
		return booking.Products[0].Name
	}
	return ""
}

var transitionTable = map[transitionKey]transitionRule{
	{model.BookingPending, model.BookingAccepted}: {
		Authorize: requireSale("accept"),
		Apply: func(b *model.Booking, actor, _ *model.User) {
			b.BookingStatus = model.BookingAccepted
			b.SaleUserId = &actor.ID
			b.SaleUser = actor
			actor.SaleTotalBookings++
		},
		Notify: func(m Mailer, b *model.Booking, customer *model.User) {
			m.SendBookingAccepted(customer.Email, displayName(customer), firstProductName(b), b.ID, b.CreatedAt)
		},
	},
	{model.BookingPending, model.BookingRejected}: {
		Authorize: requireSale("reject"),
		Apply: func(b *model.Booking, actor, _ *model.User) {
			b.BookingStatus = model.BookingRejected
			b.SaleUserId = &actor.ID
			b.SaleUser = actor
		},
		Notify: func(m Mailer, b *model.Booking, customer *model.User) {
			m.SendBookingRejected(customer.Email, displayName(customer), firstProductName(b), b.CreatedAt)
		},
	},
	{model.BookingPending, model.BookingCancelled}: {
		Authorize: requireOwnerOrSale,
		Apply: func(b *model.Booking, _, _ *model.User) {
			b.BookingStatus = model.BookingCancelled
		},
	},
	{model.BookingPending, model.BookingPending}: {
		Authorize: func(_ *model.User, _ *model.Booking) error { return nil },
		Noop:      true,
	},
	{model.BookingAccepted, model.BookingSuccess}: {
		Authorize: requireHandlingSale,
		Apply: func(b *model.Booking, actor, customer *model.User) {
			b.BookingStatus = model.BookingSuccess
			actor.UserTotalSuccessBookings++
			customer.UserTotalSuccessBookings++
			recalcSuccessPercent(actor)
		},
	},
	{model.BookingAccepted, model.BookingFailed}: {
		Authorize: requireHandlingSale,
		Apply: func(b *model.Booking, actor, customer *model.User) {
			b.BookingStatus = model.BookingFailed
			customer.UserTotalFailedBookings++
			recalcSuccessPercent(actor)
		},
	},
	{model.BookingAccepted, model.BookingAccepted}: {
		Authorize: requireHandlingSale,
		Noop:      true,
	},
}

func lookupTransition(from, to model.BookingStatus) (transitionRule, error) {
	if rule, ok := transitionTable[transitionKey{From: from, To: to}]; ok {
		return rule, nil
	}
	if from.IsTerminal() {
		return transitionRule{}, fmt.Errorf("%w: cannot update booking from status: %s", ErrInvalidState, from)
	}
	return transitionRule{}, fmt.Errorf("%w: cannot update booking to status: %s", ErrInvalidState, to)
}

// recalcSuccessPercent tính lại từ bộ đếm gốc thay vì cộng dồn, tránh lệch số.
func recalcSuccessPercent(sale *model.User) {
	if sale.SaleTotalBookings == 0 {
		sale.SaleSuccessPercent = 0
		return
	}
	sale.SaleSuccessPercent = float64(sale.UserTotalSuccessBookings) / float64(sale.SaleTotalBookings) * 100
}

func displayName(u *model.User) string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
