package model

type Category struct {
	DTO
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}

type Categories []Category

type Product struct {
	DTO
	Name         string   `gorm:"not null" json:"name"`
	NameUnsigned string   `gorm:"index" json:"-"`
	Slug         string   `gorm:"uniqueIndex" json:"slug"`
	Description  string   `json:"description"`
	Image        *string  `json:"image"`
	Price        *float64 `json:"price"`
	Discount     *float64 `json:"discount"` // phần trăm 0-100
	IsDeleted    bool     `gorm:"not null;default:false" json:"isDeleted"`
	CategoryId   *uint    `json:"categoryId"`
	Category     *Category `gorm:"foreignKey:CategoryId;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
}

type Products []Product

// PriceAfterDiscount = price × (100 − discount) / 100, discount null coi như 0.
func (p Product) PriceAfterDiscount() float64 {
	if p.Price == nil {
		return 0
	}
	discount := 0.0
	if p.Discount != nil {
		discount = *p.Discount
	}
	return *p.Price * (100 - discount) / 100
}

type CreateProductInput struct {
	Name        string   `validate:"required,min=2" json:"name"`
	Description string   `json:"description"`
	Price       *float64 `validate:"required" json:"price"`
	Discount    *float64 `validate:"omitempty,gte=0,lte=100" json:"discount"`
	CategoryId  *uint    `json:"categoryId"`
}

type UpdateProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Discount    *float64 `validate:"omitempty,gte=0,lte=100" json:"discount"`
	CategoryId  *uint    `json:"categoryId"`
}

type FilterProduct struct {
	Pagination
	SearchKey  string `json:"searchKey"`
	CategoryId *uint  `json:"categoryId"`
}
