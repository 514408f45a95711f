package repository

import (
	"domicare/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	FindAllByIDs(tx *gorm.DB, ids []uint) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *productRepository) FindAllByIDs(tx *gorm.DB, ids []uint) ([]model.Product, error) {
	var products []model.Product
	err := r.conn(tx).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Find(&products).Error
	return products, err
}
