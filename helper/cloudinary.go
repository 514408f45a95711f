package helper

import (
	"fmt"

	"domicare/config"

	"github.com/cloudinary/cloudinary-go/v2"
)

// InitCloudinary đọc thông tin tài khoản Cloudinary từ env
func InitCloudinary() (*cloudinary.Cloudinary, error) {
	cloudName := config.Config("CLOUDINARY_CLOUD_NAME")
	apiKey := config.Config("CLOUDINARY_API_KEY")
	apiSecret := config.Config("CLOUDINARY_API_SECRET")
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary env chưa được cấu hình đủ")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init failed: %w", err)
	}
	return cld, nil
}
