package handler

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"domicare/database"
	"domicare/helper"
	"domicare/model"
	"domicare/utils"

	"domicare/constants"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
)

func GetProducts(c *fiber.Ctx) error {
	db := database.DB

	var filter model.FilterProduct
	filter.Limit = utils.Ptr(c.QueryInt("limit", 20))
	filter.Page = utils.Ptr(c.QueryInt("page", 1))
	filter.SearchKey = c.Query("searchKey")
	if v := c.QueryInt("categoryId", 0); v > 0 {
		filter.CategoryId = utils.Ptr(uint(v))
	}

	query := db.Model(&model.Product{}).
		Preload("Category").
		Where("is_deleted = ?", false)

	if filter.SearchKey != "" {
		search := helper.RemoveAccents(filter.SearchKey)
		query = query.Where("name_unsigned LIKE ?", "%"+search+"%")
	}
	if filter.CategoryId != nil {
		query = query.Where("category_id = ?", *filter.CategoryId)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	var products model.Products
	if err := utils.ApplyPagination(query, filter.Limit, filter.Page).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       products,
		Limit:      filter.Limit,
		Page:       filter.Page,
		TotalCount: totalCount,
	})
}

func GetProductBySlug(c *fiber.Ctx) error {
	db := database.DB
	slugParam := c.Params("slug")

	var product model.Product
	if err := db.Preload("Category").
		Where("slug = ? AND is_deleted = ?", slugParam, false).
		First(&product).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, product)
}

func CreateProduct(c *fiber.Ctx) error {
	db := database.DB

	_, user, isAdmin, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	input, ok := c.Locals("CreateProduct").(model.CreateProductInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	product := model.Product{
		Name:         input.Name,
		NameUnsigned: helper.RemoveAccents(input.Name),
		Slug:         helper.GenerateUniqueProductSlug(db, input.Name),
		Description:  input.Description,
		Price:        input.Price,
		Discount:     input.Discount,
		CategoryId:   input.CategoryId,
	}

	if err := db.Create(&product).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_CREATE, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, product)
}

func UpdateProduct(c *fiber.Ctx) error {
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
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("invalid product id"))
	}
	input, ok := c.Locals("UpdateProduct").(model.UpdateProductInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	var product model.Product
	if err := db.Where("is_deleted = ?", false).First(&product, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	// copier chỉ ghi đè các field non-nil
	if err := copier.CopyWithOption(&product, &input, copier.Option{IgnoreEmpty: true}); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}
	if input.Name != nil {
		product.NameUnsigned = helper.RemoveAccents(*input.Name)
		product.Slug = helper.GenerateUniqueProductSlug(db, *input.Name)
	}

	if err := db.Save(&product).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, product)
}

// DeleteProduct là soft delete, booking cũ vẫn giữ tham chiếu sản phẩm
func DeleteProduct(c *fiber.Ctx) error {
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
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("invalid product id"))
	}

	var product model.Product
	if err := db.First(&product, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	product.IsDeleted = true
	if err := db.Save(&product).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Xoá dịch vụ thành công"})
}

// DeleteProducts xoá mềm nhiều dịch vụ một lúc theo mảng id
func DeleteProducts(c *fiber.Ctx) error {
	db := database.DB

	_, user, isAdmin, _ := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_ADMIN, errors.New("role invalid"))
	}

	input, ok := c.Locals("deleteIds").(model.ArrayId)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("invalid ids"))
	}

	result := db.Model(&model.Product{}).Where("id IN ?", input.IDs).Update("is_deleted", true)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, errors.New("no products matched"))
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": fmt.Sprintf("Đã xoá %d dịch vụ", result.RowsAffected)})
}

// UploadProductImage upload ảnh lên Cloudinary rồi gắn secure_url vào product
func UploadProductImage(c *fiber.Ctx) error {
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
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, errors.New("invalid product id"))
	}

	var product model.Product
	if err := db.Where("is_deleted = ?", false).First(&product, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND_RECORDS, err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Không thể lấy file ảnh", err)
	}
	if file.Size > 5*1024*1024 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File vượt quá 5MB", nil)
	}

	f, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Không thể mở file", err)
	}
	defer f.Close()

	cld, ok := c.Locals("cld").(*cloudinary.Cloudinary)
	if !ok {
		var initErr error
		cld, initErr = helper.InitCloudinary()
		if initErr != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Cloudinary chưa được cấu hình", initErr)
		}
	}

	publicID := fmt.Sprintf("product_%d_%d", product.ID, time.Now().UnixNano())
	uploadResult, err := cld.Upload.Upload(c.Context(), f, uploader.UploadParams{
		Folder:       "products",
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Upload Cloudinary thất bại", err)
	}

	product.Image = &uploadResult.SecureURL
	if err := db.Save(&product).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, product)
}

// GenerateSignature ký tham số upload cho client upload thẳng lên Cloudinary
func GenerateSignature(c *fiber.Ctx) error {
	_, user, isAdmin, isSale := helper.GetInfoUserFromToken(c)
	if user == nil {
		return nil
	}
	if !isAdmin && !isSale {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Không có quyền", nil)
	}

	type SigParams struct {
		Folder       string `json:"folder"`
		PublicID     string `json:"public_id"`
		ResourceType string `json:"resource_type"` // Parse but don't sign
	}

	var params SigParams
	if err := c.BodyParser(&params); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Params không hợp lệ", err)
	}

	timestamp := time.Now().Unix()
	timestampStr := fmt.Sprintf("%d", timestamp)

	// Collect signable parameters as map (exclude resource_type, api_key, etc.)
	paramMap := make(map[string]string)
	if params.Folder != "" {
		paramMap["folder"] = params.Folder // Raw value, no escape
	}
	if params.PublicID != "" {
		paramMap["public_id"] = params.PublicID // Raw value
	}
	paramMap["timestamp"] = timestampStr // Always include

	// Sort keys alphabetically
	keys := make([]string, 0, len(paramMap))
	for k := range paramMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Build stringToSign manually (raw values, no URL encoding)
	var stringToSign strings.Builder
	for i, k := range keys {
		if i > 0 {
			stringToSign.WriteString("&")
		}
		stringToSign.WriteString(k)
		stringToSign.WriteString("=")
		stringToSign.WriteString(paramMap[k])
	}
	stringToSign.WriteString(os.Getenv("CLOUDINARY_API_SECRET"))

	// Compute SHA1 hash
	h := sha1.New()
	h.Write([]byte(stringToSign.String()))
	signature := hex.EncodeToString(h.Sum(nil))

	return c.JSON(fiber.Map{
		"signature": signature,
		"timestamp": timestamp,
		"apiKey":    os.Getenv("CLOUDINARY_API_KEY"),
		"cloudName": os.Getenv("CLOUDINARY_CLOUD_NAME"),
	})
}

func GetCategories(c *fiber.Ctx) error {
	db := database.DB

	var categories model.Categories
	if err := db.Order("name asc").Find(&categories).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, categories)
}
