package database

import (
	"log"

	"domicare/constants"
	"domicare/model"
	"domicare/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func SeedData(db *gorm.DB) {
	roles := []model.Role{
		{Name: constants.ROLE_ADMIN},
		{Name: constants.ROLE_SALE},
		{Name: constants.ROLE_USER},
	}
	for _, role := range roles {
		if err := db.Where(model.Role{Name: role.Name}).FirstOrCreate(&role).Error; err != nil {
			log.Println("failed to seed data for role:", role.Name, "error:", err)
		}
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte("123456dc"), 10)
	hashPassword := string(bytes)
	if err != nil {
		hashPassword = "123456dc"
	}

	var adminRole model.Role
	if err := db.Where(model.Role{Name: constants.ROLE_ADMIN}).First(&adminRole).Error; err != nil {
		log.Println("failed to load admin role:", err)
		return
	}

	adminName := "Administration"
	admin := model.User{
		Email:            "admin@domicare.vn",
		Password:         hashPassword,
		Name:             &adminName,
		NameUnsigned:     "administration",
		IsActive:         true,
		IsEmailConfirmed: true,
	}
	if err := db.Where(model.User{Email: admin.Email}).FirstOrCreate(&admin).Error; err != nil {
		log.Println("failed to seed data for user:", admin.Email, "error:", err)
		return
	}
	if err := db.Model(&admin).Association("Roles").Append(&adminRole); err != nil {
		log.Println("failed to assign admin role:", err)
	}

	categories := []model.Category{
		{Name: "Dọn dẹp nhà cửa"},
		{Name: "Chăm sóc người già"},
		{Name: "Trông trẻ"},
		{Name: "Nấu ăn gia đình"},
	}
	for i := range categories {
		if err := db.Where(model.Category{Name: categories[i].Name}).FirstOrCreate(&categories[i]).Error; err != nil {
			log.Println("failed to seed data for category:", categories[i].Name, "error:", err)
		}
	}

	if len(categories) == 0 || categories[0].ID == 0 {
		return
	}
	products := []model.Product{
		{
			Name:         "Dọn dẹp nhà theo giờ",
			NameUnsigned: "don dep nha theo gio",
			Slug:         "don-dep-nha-theo-gio",
			Description:  "Dịch vụ dọn dẹp nhà cửa theo giờ, tối thiểu 2 giờ.",
			Price:        utils.Ptr(90000.0),
			CategoryId:   &categories[0].ID,
		},
		{
			Name:         "Tổng vệ sinh nhà cửa",
			NameUnsigned: "tong ve sinh nha cua",
			Slug:         "tong-ve-sinh-nha-cua",
			Description:  "Tổng vệ sinh toàn bộ nhà, đội 2-4 nhân viên.",
			Price:        utils.Ptr(1200000.0),
			Discount:     utils.Ptr(10.0),
			CategoryId:   &categories[0].ID,
		},
	}
	for _, product := range products {
		if err := db.Where(model.Product{Slug: product.Slug}).FirstOrCreate(&product).Error; err != nil {
			log.Println("failed to seed data for product:", product.Name, "error:", err)
		}
	}
}
