package routes

import (
	"seva-be/controllers"
	"seva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue and dashboard routes.
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, sc *controllers.StreamController, rateLimit int) {
	issues := r.Group("/api/issues")
	{
		issues.GET("", ic.GetAllIssues)
		issues.GET("/stream", sc.StreamIssueEvents)
		issues.POST("", middlewares.IssueRateLimiter(rateLimit), ic.CreateIssue)
		issues.POST("/json", middlewares.IssueRateLimiter(rateLimit), ic.CreateIssueJSON)
		issues.GET("/:issueId", ic.GetIssue)
		issues.PUT("/:issueId/status", ic.UpdateIssueStatus)
	}

	r.GET("/api/stats", ic.GetStats)
}
