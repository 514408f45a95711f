package handler

import (
	"errors"

	"domicare/constants"
	"domicare/helper"
	"domicare/service"
	"domicare/utils"

	"github.com/gofiber/fiber/v2"
)

// DashboardSvc được gán trong main sau khi kết nối database
var DashboardSvc service.DashboardService

// GetDashboardOverview số liệu tổng quan theo khoảng ngày, chỉ admin
func GetDashboardOverview(c *fiber.Ctx) error {
	_, user, isAdmin, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	start, end, err := utils.ParseDateRange(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}

	overview, err := DashboardSvc.GetOverview(start, end)
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, overview)
}

func GetRevenueChart(c *fiber.Ctx) error {
	_, user, isAdmin, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	year := c.QueryInt("year", 0)
	chart, err := DashboardSvc.GetRevenueChart(c.Context(), year)
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, chart)
}

func GetTopSales(c *fiber.Ctx) error {
	_, user, isAdmin, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	start, end, err := utils.ParseDateRange(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}

	topSales, err := DashboardSvc.GetTopSales(start, end, c.QueryInt("limit", 5))
	if err != nil {
		return utils.ErrorResponse(c, service.HTTPStatus(err), err.Error(), err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, topSales)
}
