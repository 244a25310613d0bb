package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/controllers"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/middlewares"
)

type Controllers struct {
	Auth          *controllers.AuthController
	Meals         *controllers.MealController
	Assistant     *controllers.AssistantController
	Notifications *controllers.NotificationController
	Realtime      *controllers.RealtimeController
}

func SetupRouter(c Controllers) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/send-phone-otp", c.Auth.SendPhoneOtp)
		auth.POST("/register-phone", c.Auth.SendPhoneOtp)
		auth.POST("/verify-phone-otp", c.Auth.VerifyPhoneOtp)
		auth.POST("/resend-verification-email", c.Auth.ResendVerificationEmail)
	}

	// Authenticated auth routes
	authed := r.Group("/auth")
	authed.Use(middlewares.AuthMiddleware())
	{
		authed.POST("/logout", c.Auth.Logout)
		authed.GET("/profile", c.Auth.Profile)
		authed.PUT("/profile", c.Auth.UpdateProfile)
		authed.POST("/verify-phone-and-set-username", c.Auth.SetUsername)
	}

	// Meals and stats
	meals := r.Group("/meals")
	meals.Use(middlewares.AuthMiddleware())
	{
		meals.GET("/today", c.Meals.Today)
		meals.POST("", c.Meals.Create)
		meals.GET("/stats/daily", c.Meals.DailyStats)
		meals.GET("/stats/weekly", c.Meals.WeeklyStats)
		meals.GET("/stats/monthly", c.Meals.MonthlyStats)
		meals.GET("/stats/summary", c.Meals.StatsSummary)
		meals.GET("/:id", c.Meals.GetByID)
		meals.POST("/:id/foods", c.Meals.AddFood)
		meals.DELETE("/:id/foods/:foodID", c.Meals.RemoveFood)
	}

	// AI assistant, gated to paid plans
	ai := r.Group("/ai")
	ai.Use(middlewares.AuthMiddleware(), middlewares.RequireRole("prouser", "admin"))
	{
		ai.POST("/chat", c.Assistant.Chat)
	}

	// Push devices
	notifications := r.Group("/notifications")
	notifications.Use(middlewares.AuthMiddleware())
	{
		notifications.POST("/devices", c.Notifications.RegisterDevice)
		notifications.PUT("/devices", c.Notifications.Toggle)
	}

	// Realtime sync; token authenticates in the handler
	r.GET("/ws", c.Realtime.Serve)

	return r
}
