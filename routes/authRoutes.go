package routes

import (
	"seva-be/controllers"
	"seva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the admin authentication routes.
func AuthRoutes(r *gin.Engine, ac *controllers.AuthController) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", ac.Register)
		auth.POST("/login", ac.Login)
		auth.GET("/me", middlewares.AuthMiddleware(), ac.Me)
		auth.POST("/logout", ac.Logout)
	}
}
