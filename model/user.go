package model

import "time"

type Role struct {
	DTO
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}

type User struct {
	DTO
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	Password     string  `gorm:"not null" json:"-"`
	Name         *string `json:"name"`
	NameUnsigned string  `gorm:"index" json:"-"` // tên bỏ dấu, phục vụ search
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	Avatar       *string `json:"avatar"`

	IsActive               bool    `gorm:"not null;default:true" json:"isActive"`
	IsEmailConfirmed       bool    `gorm:"not null;default:false" json:"isEmailConfirmed"`
	EmailConfirmationToken *string `json:"-"`

	Roles []Role `gorm:"many2many:user_roles;" json:"roles"`

	// Bộ đếm thống kê, chỉ được cập nhật qua chuyển trạng thái booking
	SaleTotalBookings        int     `gorm:"not null;default:0" json:"saleTotalBookings"`
	UserTotalSuccessBookings int     `gorm:"not null;default:0" json:"userTotalSuccessBookings"`
	UserTotalFailedBookings  int     `gorm:"not null;default:0" json:"userTotalFailedBookings"`
	SaleSuccessPercent       float64 `gorm:"not null;default:0" json:"saleSuccessPercent"`
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

type Users []User

type RegisterUserInput struct {
	Name     string `validate:"required" json:"name"`
	Email    string `validate:"required,email" json:"email"`
	Phone    string `validate:"required" json:"phone"`
	Password string `validate:"required,min=6" json:"password"`
	Address  string `json:"address"`
}

type EditUserInput struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Avatar  *string `json:"avatar"`
}

type UpdateUserRoleInput struct {
	UserId  uint     `validate:"required" json:"userId"`
	RoleIds []uint   `json:"roleIds"`
	Roles   []string `json:"roles"`
}

type FilterUser struct {
	Pagination
	SearchKey string `json:"searchKey"`
	Active    *bool  `json:"active"`
	Role      *string `json:"role"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type PasswordResetToken struct {
	DTO
	UserId    uint      `gorm:"not null" json:"userId"`
	Token     string    `gorm:"type:varchar(255);not null;unique" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	User      User      `gorm:"foreignKey:UserId" json:"user"`
}
