package main

import (
	"log"

	"domicare/config"
	"domicare/database"
	"domicare/handler"
	"domicare/helper"
	"domicare/repository"
	"domicare/router"
	"domicare/service"
	"domicare/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.Config("FRONTEND_URL"),
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	database.ConnectDB()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Config("REDIS_ADDR"),
		Password: config.Config("REDIS_PASSWORD"),
	})

	bookingRepo := repository.NewBookingRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	productRepo := repository.NewProductRepository(database.DB)

	mailer := utils.NewGomailMailer()
	bookingSvc := service.NewBookingService(database.DB, bookingRepo, userRepo, productRepo, mailer)
	handler.BookingSvc = bookingSvc
	handler.DashboardSvc = service.NewDashboardService(bookingSvc, bookingRepo, userRepo, redisClient)

	helper.StartStatsScheduler()

	router.SetupRoutes(app)

	port := config.Config("PORT")
	if port == "" {
		port = "8002"
	}
	log.Fatal(app.Listen(":" + port))
}
