package router

import (
	"domicare/handler"
	"domicare/middleware"
	"domicare/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	auth := v1.Group("/auth")
	auth.Post("/register", validate.RegisterUser(), handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Post("/refresh-token", handler.RefreshToken)
	auth.Get("/verify-email", handler.VerifyEmail)
	auth.Post("/forgot-password", validate.ForgotPassword(), handler.ForgotPassword)
	auth.Post("/reset-password", validate.ResetPassword(), handler.ResetPassword)

	user := v1.Group("/users", logger.New())
	user.Get("/me", middleware.Protected(), handler.Me)
	user.Put("/me", middleware.Protected(), validate.EditUser(), handler.EditUser)
	user.Get("/", middleware.Protected(), handler.GetUsers)
	user.Get("/sales", middleware.Protected(), handler.GetSaleUsers)
	user.Put("/role", middleware.Protected(), validate.UpdateUserRole(), handler.UpdateUserRole)
	user.Patch("/:userId/active", middleware.Protected(), validate.GetById("userId"), handler.ActivateUser)
	user.Get("/:userId/bookings", middleware.Protected(), validate.GetById("userId"), handler.GetBookingsByUser)

	product := v1.Group("/products", logger.New())
	product.Get("/", handler.GetProducts)
	product.Get("/categories", handler.GetCategories)
	product.Get("/:slug", handler.GetProductBySlug)
	product.Post("/", middleware.Protected(), validate.CreateProduct(), handler.CreateProduct)
	product.Put("/:productId", middleware.Protected(), validate.GetById("productId"), validate.UpdateProduct(), handler.UpdateProduct)
	product.Delete("/", middleware.Protected(), validate.Delete(), handler.DeleteProducts)
	product.Delete("/:productId", middleware.Protected(), validate.GetById("productId"), handler.DeleteProduct)
	product.Post("/:productId/image", middleware.Protected(), validate.GetById("productId"), handler.UploadProductImage)

	v1.Post("/cloudinary-signature", middleware.Protected(), handler.GenerateSignature)

	booking := v1.Group("/bookings", logger.New())
	// guest được phép tạo booking kèm guestEmail
	booking.Post("/", middleware.OptionalAuth(), validate.CreateBooking(), handler.CreateBooking)
	booking.Get("/", middleware.Protected(), handler.GetBookings)
	booking.Get("/me", middleware.Protected(), handler.GetMyBookings)
	booking.Get("/:bookingId", middleware.Protected(), validate.GetById("bookingId"), handler.GetBookingById)
	booking.Put("/", middleware.Protected(), validate.UpdateBooking(), handler.UpdateBooking)
	booking.Patch("/status", middleware.Protected(), validate.UpdateBookingStatus(), handler.UpdateBookingStatus)
	booking.Delete("/:bookingId", middleware.Protected(), validate.GetById("bookingId"), handler.CancelBooking)

	dashboard := v1.Group("/dashboard", logger.New())
	dashboard.Get("/overview", middleware.Protected(), handler.GetDashboardOverview)
	dashboard.Get("/revenue-chart", middleware.Protected(), handler.GetRevenueChart)
	dashboard.Get("/top-sales", middleware.Protected(), handler.GetTopSales)
}
