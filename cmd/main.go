package main

import (
	"log"
	"os"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/config"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/controllers"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/routes"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/services"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/utils"
)

func main() {
	config.Load()
	logger := config.NewLogger()
	defer logger.Sync()

	config.InitDB()
	utils.InitMailer()

	aiService := services.NewAssistantService()
	authService := services.NewAuthService(services.NewIdentityService(), logger)
	mealService := services.NewMealService(aiService, logger)
	statsService := services.NewStatsService()
	hub := services.NewRealtimeHub()
	pushService, err := services.NewPushService(config.DB, logger)
	if err != nil {
		log.Fatalf("failed to init push service: %v", err)
	}

	r := routes.SetupRouter(routes.Controllers{
		Auth:          controllers.NewAuthController(authService),
		Meals:         controllers.NewMealController(mealService, statsService, hub, pushService),
		Assistant:     controllers.NewAssistantController(aiService),
		Notifications: controllers.NewNotificationController(pushService),
		Realtime:      controllers.NewRealtimeController(hub, logger),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
