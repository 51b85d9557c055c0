// Package app wires the HTTP routes for the study-assistance API.
package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP router with CORS and all API routes.
func (s *Server) NewRouter() *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)

	router.POST("/api/auth/login", s.Login)
	router.GET("/api/auth/google/url", s.GoogleAuthURL)
	router.GET("/auth/callback", s.GoogleCallback)

	router.POST("/api/usage/check", s.CheckUsage)
	router.POST("/api/usage/increment", s.IncrementUsage)
	router.POST("/api/subscription/upgrade", s.UpgradeSubscription)

	router.GET("/api/tasks/:userId", s.ListTasks)
	router.POST("/api/tasks", s.CreateTask)
	router.PATCH("/api/tasks/:id", s.ToggleTask)

	router.GET("/api/history/:userId", s.ListHistory)
	router.POST("/api/history", s.AppendHistory)

	router.POST("/api/ai/assignment", s.AssignmentHelp)
	router.POST("/api/ai/research", s.ResearchAssistance)
	router.POST("/api/ai/explain", s.StudyExplanation)

	return router
}
