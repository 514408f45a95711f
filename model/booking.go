package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingAccepted  BookingStatus = "ACCEPTED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingSuccess   BookingStatus = "SUCCESS"
	BookingFailed    BookingStatus = "FAILED"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingAccepted, BookingRejected, BookingCancelled, BookingSuccess, BookingFailed:
		return BookingStatus(s), true
	}
	return "", false
}

// IsTerminal báo trạng thái không còn chuyển tiếp được nữa.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingRejected, BookingCancelled, BookingSuccess, BookingFailed:
		return true
	}
	return false
}

type Booking struct {
	DTO
	Address       string        `gorm:"not null" json:"address"`
	Phone         string        `gorm:"not null" json:"phone"`
	Note          *string       `json:"note"`
	StartTime     time.Time     `gorm:"not null" json:"startTime"`
	TotalPrice    float64       `json:"totalPrice"`
	IsPeriodic    bool          `gorm:"not null;default:false" json:"isPeriodic"`
	BookingStatus BookingStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"bookingStatus"`

	UserId uint  `gorm:"not null;index" json:"userId"`
	User   *User `gorm:"foreignKey:UserId" json:"user,omitempty"`

	SaleUserId *uint `gorm:"index" json:"saleUserId"`
	SaleUser   *User `gorm:"foreignKey:SaleUserId" json:"saleUser,omitempty"`

	Products []Product `gorm:"many2many:booking_products;" json:"products"`

	CreatedBy string `json:"createdBy"`
	UpdatedBy string `json:"updatedBy"`
}

type Bookings []Booking

type CreateBookingInput struct {
	Name       string    `json:"name"`
	Phone      string    `validate:"required,min=10,max=11,numeric" json:"phone"`
	Address    string    `validate:"required" json:"address"`
	ProductIds []uint    `validate:"required,min=1" json:"productIds"`
	IsPeriodic bool      `json:"isPeriodic"`
	Note       string    `json:"note"`
	StartTime  time.Time `validate:"required" json:"startTime"`
	GuestEmail string    `validate:"omitempty,email" json:"guestEmail"`
}

type UpdateBookingInput struct {
	BookingId  uint       `validate:"required" json:"bookingId"`
	Name       *string    `json:"name"`
	Address    *string    `json:"address"`
	Phone      *string    `json:"phone"`
	Note       *string    `json:"note"`
	StartTime  *time.Time `json:"startTime"`
	IsPeriodic *bool      `json:"isPeriodic"`
	Status     *string    `json:"status"`
	ProductId  *uint      `json:"productId"`
}

type UpdateBookingStatusInput struct {
	BookingId uint   `validate:"required" json:"bookingId"`
	Status    string `validate:"required" json:"status"`
}

type FilterBooking struct {
	Page          int    `json:"page"`
	PageSize      int    `json:"pageSize"`
	UserId        *uint  `json:"userId"`
	SaleId        *uint  `json:"saleId"`
	BookingStatus string `json:"bookingStatus"`
	OtherStatus   string `json:"otherBookingStatus"`
	SearchName    string `json:"searchName"`
	SortBy        string `json:"sortBy"`
	SortDirection string `json:"sortDirection"`
}

type BookingPageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type BookingPage struct {
	Meta BookingPageMeta       `json:"meta"`
	Data []MiniBookingResponse `json:"data"`
}

// MiniBookingResponse là view tóm tắt trả về cho client.
type MiniBookingResponse struct {
	ID            uint          `json:"id"`
	Address       string        `json:"address"`
	Phone         string        `json:"phone"`
	Note          *string       `json:"note"`
	StartTime     time.Time     `json:"startTime"`
	TotalPrice    float64       `json:"totalPrice"`
	IsPeriodic    bool          `json:"isPeriodic"`
	BookingStatus BookingStatus `json:"bookingStatus"`
	Products      []ProductMini `json:"products"`
	UserDTO       *UserMini     `json:"userDTO"`
	SaleDTO       *UserMini     `json:"saleDTO"`
	CreatedBy     string        `json:"createBy"`
	UpdatedBy     string        `json:"updateBy"`
	CreatedAt     time.Time     `json:"createAt"`
	UpdatedAt     time.Time     `json:"updateAt"`
}

type ProductMini struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Image    *string  `json:"image"`
	Price    *float64 `json:"price"`
	Discount *float64 `json:"discount"`
}

type UserMini struct {
	ID     uint    `json:"id"`
	Name   *string `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar"`
	Phone  *string `json:"phone"`
}

func (b *Booking) ToMiniResponse() MiniBookingResponse {
	resp := MiniBookingResponse{
		ID:            b.ID,
		Address:       b.Address,
		Phone:         b.Phone,
		Note:          b.Note,
		StartTime:     b.StartTime,
		TotalPrice:    b.TotalPrice,
		IsPeriodic:    b.IsPeriodic,
		BookingStatus: b.BookingStatus,
		CreatedBy:     b.CreatedBy,
		UpdatedBy:     b.UpdatedBy,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for _, p := range b.Products {
		resp.Products = append(resp.Products, ProductMini{
			ID:       p.ID,
			Name:     p.Name,
			Image:    p.Image,
			Price:    p.Price,
			Discount: p.Discount,
		})
	}
	if b.User != nil {
		resp.UserDTO = &UserMini{ID: b.User.ID, Name: b.User.Name, Email: b.User.Email, Avatar: b.User.Avatar, Phone: b.User.Phone}
	}
	if b.SaleUser != nil {
		resp.SaleDTO = &UserMini{ID: b.SaleUser.ID, Name: b.SaleUser.Name, Email: b.SaleUser.Email, Avatar: b.SaleUser.Avatar, Phone: b.SaleUser.Phone}
	}
	return resp
}
