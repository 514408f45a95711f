package repository

import (
	"errors"
	"time"

	"domicare/constants"
	"domicare/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(tx *gorm.DB, user *model.User) error
	Save(tx *gorm.DB, user *model.User) error
	FindByID(tx *gorm.DB, id uint) (*model.User, error)
	// FindByIDForUpdate khóa dòng user trong transaction, tuần tự hóa các
	// request đặt lịch đồng thời của cùng một user.
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.User, error)
	FindByEmail(tx *gorm.DB, email string) (*model.User, error)
	AssignRole(tx *gorm.DB, user *model.User, roleName string) error
	CountCreatedBetween(start, end time.Time) (int64, error)
	FindAllSales() ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userRepository) Create(tx *gorm.DB, user *model.User) error {
	return r.conn(tx).Create(user).Error
}

func (r *userRepository) Save(tx *gorm.DB, user *model.User) error {
	return r.conn(tx).Omit("Roles").Save(user).Error
}

func (r *userRepository) FindByID(tx *gorm.DB, id uint) (*model.User, error) {
	var user model.User
	if err := r.conn(tx).Preload("Roles").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.User, error) {
	var user model.User
	if err := r.conn(tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(tx *gorm.DB, email string) (*model.User, error) {
	var user model.User
	if err := r.conn(tx).Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) AssignRole(tx *gorm.DB, user *model.User, roleName string) error {
	conn := r.conn(tx)
	var role model.Role
	if err := conn.Where("name = ?", roleName).First(&role).Error; err != nil {
		return err
	}
	return conn.Model(user).Association("Roles").Append(&role)
}

func (r *userRepository) CountCreatedBetween(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *userRepository) FindAllSales() ([]model.User, error) {
	var users []model.User
	err := r.db.
		Joins("JOIN user_roles ur ON ur.user_id = users.id").
		Joins("JOIN roles ON roles.id = ur.role_id").
		Where("roles.name = ?", constants.ROLE_SALE).
		Find(&users).Error
	return users, err
}
