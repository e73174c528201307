package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"eduflow/config"
	"eduflow/database"
	"eduflow/middleware"
	"eduflow/payment"
	authRoutes "eduflow/routers/authRoutes"
	courseRoutes "eduflow/routers/courseRoutes"
	enrollmentRoutes "eduflow/routers/enrollmentRoutes"
	lessonRoutes "eduflow/routers/lessonRoutes"
	moduleRoutes "eduflow/routers/moduleRoutes"
	quizRoutes "eduflow/routers/quizRoutes"
	"eduflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()

	db, err := database.Connect(config.AppConfig.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	gateway := payment.NewClient(
		config.AppConfig.RazorpayKeyID,
		config.AppConfig.RazorpayKeySecret,
		config.AppConfig.RazorpayWebhookSecret,
	)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppConfig.FrontendURL,
		AllowMethods:     "GET,POST,PATCH,PUT,DELETE",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: true,
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/healthcheck", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Server is up and running!", nil)
	})

	authRoutes.SetupAuthRoutes(app, db)
	courseRoutes.SetupCourseRoutes(app, db)
	moduleRoutes.SetupModuleRoutes(app, db)
	lessonRoutes.SetupLessonRoutes(app, db)
	enrollmentRoutes.SetupEnrollmentRoutes(app, db, gateway)
	quizRoutes.SetupQuizRoutes(app, db)

	scheduler := utils.InitializeMaintenanceScheduler(db)

	// Shut down cleanly on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		scheduler.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	database.Close(db)
}
