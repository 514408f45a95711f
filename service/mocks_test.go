package service

import (
	"database/sql"
	"time"

	"domicare/model"
	"domicare/repository"

	"gorm.io/gorm"
)

// --- Mock TxManager ---

type mockTx struct{}

func (m *mockTx) Transaction(fc func(tx *gorm.DB) error, _ ...*sql.TxOptions) error {
	return fc(nil)
}

// --- Mock BookingRepository ---

type mockBookingRepo struct {
	createFn                       func(tx *gorm.DB, booking *model.Booking) error
	saveFn                         func(tx *gorm.DB, booking *model.Booking) error
	findByIDFn                     func(tx *gorm.DB, id uint) (*model.Booking, error)
	findByIDWithRelationsFn        func(tx *gorm.DB, id uint) (*model.Booking, error)
	findByUserIDFn                 func(userID uint) ([]model.Booking, error)
	countByUserSinceFn             func(tx *gorm.DB, userID uint, since time.Time) (int64, error)
	firstPendingByUserAndProductFn func(tx *gorm.DB, userID, productID uint) (*model.Booking, error)
	replaceProductsFn              func(tx *gorm.DB, booking *model.Booking, products []model.Product) error
	findPaginatedFn                func(filter model.FilterBooking) ([]model.Booking, int64, error)
	countByStatusBetweenFn         func(status model.BookingStatus, start, end time.Time) (int64, error)
	countExcludingStatusBetweenFn  func(status model.BookingStatus, start, end time.Time) (int64, error)
	sumRevenueBetweenFn            func(status model.BookingStatus, start, end time.Time) (float64, error)
	topRevenueSalesFn              func(start, end time.Time, limit int) ([]repository.SaleRevenue, error)
}

func (m *mockBookingRepo) Create(tx *gorm.DB, booking *model.Booking) error {
	return m.createFn(tx, booking)
}
func (m *mockBookingRepo) Save(tx *gorm.DB, booking *model.Booking) error {
	return m.saveFn(tx, booking)
}
func (m *mockBookingRepo) FindByID(tx *gorm.DB, id uint) (*model.Booking, error) {
	return m.findByIDFn(tx, id)
}
func (m *mockBookingRepo) FindByIDWithRelations(tx *gorm.DB, id uint) (*model.Booking, error) {
	return m.findByIDWithRelationsFn(tx, id)
}
func (m *mockBookingRepo) FindByUserID(userID uint) ([]model.Booking, error) {
	return m.findByUserIDFn(userID)
}
func (m *mockBookingRepo) CountByUserSince(tx *gorm.DB, userID uint, since time.Time) (int64, error) {
	return m.countByUserSinceFn(tx, userID, since)
}
func (m *mockBookingRepo) FirstPendingByUserAndProduct(tx *gorm.DB, userID, productID uint) (*model.Booking, error) {
	return m.firstPendingByUserAndProductFn(tx, userID, productID)
}
func (m *mockBookingRepo) ReplaceProducts(tx *gorm.DB, booking *model.Booking, products []model.Product) error {
	return m.replaceProductsFn(tx, booking, products)
}
func (m *mockBookingRepo) FindPaginated(filter model.FilterBooking) ([]model.Booking, int64, error) {
	return m.findPaginatedFn(filter)
}
func (m *mockBookingRepo) CountByStatusBetween(status model.BookingStatus, start, end time.Time) (int64, error) {
	return m.countByStatusBetweenFn(status, start, end)
}
func (m *mockBookingRepo) CountExcludingStatusBetween(status model.BookingStatus, start, end time.Time) (int64, error) {
	return m.countExcludingStatusBetweenFn(status, start, end)
}
func (m *mockBookingRepo) SumRevenueBetween(status model.BookingStatus, start, end time.Time) (float64, error) {
	return m.sumRevenueBetweenFn(status, start, end)
}
func (m *mockBookingRepo) TopRevenueSales(start, end time.Time, limit int) ([]repository.SaleRevenue, error) {
	return m.topRevenueSalesFn(start, end, limit)
}

// --- Mock UserRepository ---

type mockUserRepo struct {
	createFn              func(tx *gorm.DB, user *model.User) error
	saveFn                func(tx *gorm.DB, user *model.User) error
	findByIDFn            func(tx *gorm.DB, id uint) (*model.User, error)
	findByIDForUpdateFn   func(tx *gorm.DB, id uint) (*model.User, error)
	findByEmailFn         func(tx *gorm.DB, email string) (*model.User, error)
	assignRoleFn          func(tx *gorm.DB, user *model.User, roleName string) error
	countCreatedBetweenFn func(start, end time.Time) (int64, error)
	findAllSalesFn        func() ([]model.User, error)
}

func (m *mockUserRepo) Create(tx *gorm.DB, user *model.User) error {
	return m.createFn(tx, user)
}
func (m *mockUserRepo) Save(tx *gorm.DB, user *model.User) error {
	return m.saveFn(tx, user)
}
func (m *mockUserRepo) FindByID(tx *gorm.DB, id uint) (*model.User, error) {
	return m.findByIDFn(tx, id)
}
func (m *mockUserRepo) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.User, error) {
	return m.findByIDForUpdateFn(tx, id)
}
func (m *mockUserRepo) FindByEmail(tx *gorm.DB, email string) (*model.User, error) {
	return m.findByEmailFn(tx, email)
}
func (m *mockUserRepo) AssignRole(tx *gorm.DB, user *model.User, roleName string) error {
	return m.assignRoleFn(tx, user, roleName)
}
func (m *mockUserRepo) CountCreatedBetween(start, end time.Time) (int64, error) {
	return m.countCreatedBetweenFn(start, end)
}
func (m *mockUserRepo) FindAllSales() ([]model.User, error) {
	return m.findAllSalesFn()
}

// --- Mock ProductRepository ---

type mockProductRepo struct {
	findAllByIDsFn func(tx *gorm.DB, ids []uint) ([]model.Product, error)
}

func (m *mockProductRepo) FindAllByIDs(tx *gorm.DB, ids []uint) ([]model.Product, error) {
	return m.findAllByIDsFn(tx, ids)
}

// --- Mock Mailer ---

type sentMail struct {
	Kind string
	To   string
}

type mockMailer struct {
	sent []sentMail
}

func (m *mockMailer) SendGuestPassword(to, name, password string) {
	m.sent = append(m.sent, sentMail{Kind: "guest_password", To: to})
}
func (m *mockMailer) SendBookingAccepted(to, name, productName string, bookingID uint, createdAt time.Time) {
	m.sent = append(m.sent, sentMail{Kind: "accepted", To: to})
}
func (m *mockMailer) SendBookingRejected(to, name, productName string, createdAt time.Time) {
	m.sent = append(m.sent, sentMail{Kind: "rejected", To: to})
}
