package handler

import (
	"errors"

	"domicare/constants"
	"domicare/database"
	"domicare/helper"
	"domicare/model"
	"domicare/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
)

func Me(c *fiber.Ctx) error {
	_, user, _, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	return utils.SuccessResponse(c, fiber.StatusOK, user)
}

func GetUsers(c *fiber.Ctx) error {
	db := database.DB

	_, user, isAdmin, isSale := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin && !isSale {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	var filter model.FilterUser
	filter.Limit = utils.Ptr(c.QueryInt("limit", 20))
	filter.Page = utils.Ptr(c.QueryInt("page", 1))
	filter.SearchKey = c.Query("searchKey")
	if role := c.Query("role"); role != "" {
		filter.Role = &role
	}

	query := db.Model(&model.User{}).Preload("Roles")

	if filter.SearchKey != "" {
		search := helper.RemoveAccents(filter.SearchKey)
		query = query.Where("name_unsigned LIKE ? OR email LIKE ?", "%"+search+"%", "%"+filter.SearchKey+"%")
	}
	if filter.Role != nil {
		query = query.
			Joins("JOIN user_roles ur ON ur.user_id = users.id").
			Joins("JOIN roles r ON r.id = ur.role_id").
			Where("r.name = ?", *filter.Role)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	var users model.Users
	if err := utils.ApplyPagination(query, filter.Limit, filter.Page).
		Order("created_at desc").
		Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       users,
		Limit:      filter.Limit,
		Page:       filter.Page,
		TotalCount: totalCount,
	})
}

func GetSaleUsers(c *fiber.Ctx) error {
	db := database.DB

	_, user, isAdmin, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	var sales model.Users
	if err := db.
		Joins("JOIN user_roles ur ON ur.user_id = users.id").
		Joins("JOIN roles r ON r.id = ur.role_id").
		Where("r.name = ?", constants.ROLE_SALE).
		Find(&sales).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, sales)
}

// EditUser cập nhật hồ sơ của chính user đang đăng nhập
func EditUser(c *fiber.Ctx) error {
	db := database.DB

	_, user, _, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}

	input, ok := c.Locals("EditUser").(model.EditUserInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	// copier chỉ ghi đè các field non-nil
	if err := copier.CopyWithOption(user, &input, copier.Option{IgnoreEmpty: true}); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}
	if input.Name != nil {
		user.NameUnsigned = helper.RemoveAccents(*input.Name)
	}

	if err := db.Omit("Roles").Save(user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, user)
}

// UpdateUserRole thay toàn bộ role của một user, chỉ admin
func UpdateUserRole(c *fiber.Ctx) error {
	db := database.DB

	_, user, isAdmin, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	input, ok := c.Locals("UpdateUserRole").(model.UpdateUserRoleInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	var target model.User
	if err := db.Preload("Roles").First(&target, input.UserId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	var roles []model.Role
	if len(input.RoleIds) > 0 {
		if err := db.Where("id IN ?", input.RoleIds).Find(&roles).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
	} else {
		if err := db.Where("name IN ?", input.Roles).Find(&roles).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
	}
	if len(roles) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("roles not found"))
	}

	if err := db.Model(&target).Association("Roles").Replace(roles); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}

	target.Roles = roles
	return utils.SuccessResponse(c, fiber.StatusOK, target)
}

// ActivateUser bật/tắt tài khoản, chỉ admin
func ActivateUser(c *fiber.Ctx) error {
	db := database.DB

	_, user, isAdmin, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	id, ok := c.Locals("inputId").(int)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("invalid user id"))
	}

	type ActiveInput struct {
		Active bool `json:"active"`
	}
	var input ActiveInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}

	var target model.User
	if err := db.First(&target, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	target.IsActive = input.Active
	if err := db.Omit("Roles").Save(&target).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, target)
}
