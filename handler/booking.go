package handler

import (
	"errors"
	"strconv"

	"domicare/constants"
	"domicare/helper"
	"domicare/model"
	"domicare/service"
	"domicare/utils"

	"github.com/gofiber/fiber/v2"
)

// BookingSvc được gán trong main sau khi kết nối database
var BookingSvc service.BookingService

// CreateBooking nhận cả guest (kèm guestEmail) lẫn user đã đăng nhập
func CreateBooking(c *fiber.Ctx) error {
	input, ok := c.Locals("CreateBooking").(model.CreateBookingInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	requesterEmail := ""
	if current, ok := c.Locals("currentUser").(*model.User); ok && current != nil {
		requesterEmail = current.Email
	}

	booking, err := BookingSvc.CreateBooking(input, requesterEmail)
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, booking)
}

func GetBookingById(c *fiber.Ctx) error {
	id, ok := c.Locals("inputId").(int)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("invalid booking id"))
	}

	_, user, isAdmin, isSale := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}

	booking, err := BookingSvc.GetBooking(uint(id))
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	if !isAdmin && !isSale && booking.UserDTO != nil && booking.UserDTO.ID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("not booking owner"))
	}

	return utils.SuccessResponse(c, fiber.StatusOK, booking)
}

func GetMyBookings(c *fiber.Ctx) error {
	claim, user, _, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}

	bookings, err := BookingSvc.GetBookingsByUser(claim.UserId)
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, bookings)
}

func GetBookingsByUser(c *fiber.Ctx) error {
	id, ok := c.Locals("inputId").(int)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("invalid user id"))
	}

	_, user, isAdmin, isSale := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin && !isSale {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	bookings, err := BookingSvc.GetBookingsByUser(uint(id))
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, bookings)
}

// GetBookings danh sách có phân trang cho trang quản trị
func GetBookings(c *fiber.Ctx) error {
	_, user, isAdmin, isSale := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin && !isSale {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	filter := model.FilterBooking{
		Page:          c.QueryInt("page", 1),
		PageSize:      c.QueryInt("pageSize", 20),
		BookingStatus: c.Query("bookingStatus"),
		OtherStatus:   c.Query("otherBookingStatus"),
		SearchName:    c.Query("searchName"),
		SortBy:        c.Query("sortBy"),
		SortDirection: c.Query("sortDirection"),
	}
	if v, err := strconv.Atoi(c.Query("userId")); err == nil && v > 0 {
		filter.UserId = utils.Ptr(uint(v))
	}
	if v, err := strconv.Atoi(c.Query("saleId")); err == nil && v > 0 {
		filter.SaleId = utils.Ptr(uint(v))
	}

	page, err := BookingSvc.ListBookings(filter)
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, page)
}

func UpdateBooking(c *fiber.Ctx) error {
	input, ok := c.Locals("UpdateBooking").(model.UpdateBookingInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	_, user, _, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}

	booking, err := BookingSvc.UpdateBooking(input, user)
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, booking)
}

func UpdateBookingStatus(c *fiber.Ctx) error {
	input, ok := c.Locals("UpdateBookingStatus").(model.UpdateBookingStatusInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	claim, user, _, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}

	booking, err := BookingSvc.UpdateBookingStatus(input, claim.Email)
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, booking)
}

func CancelBooking(c *fiber.Ctx) error {
	id, ok := c.Locals("inputId").(int)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("invalid booking id"))
	}

	_, user, _, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}

	booking, err := BookingSvc.CancelBooking(uint(id), user)
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, booking)
}
