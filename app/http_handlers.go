package app

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Jason121485/StudyMate-AI/app/models"

	"github.com/gin-gonic/gin"
)

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

type userIDRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

// CheckUsage reports the current quota standing without consuming a request.
// A stale last_request_date is reset before evaluation.
func (s *Server) CheckUsage(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing userId"})
		return
	}

	user, err := s.store.GetUserByID(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	today := todayUTC(time.Now())
	count := user.RequestCount
	if user.LastRequestDate != today {
		count = 0
		if err := s.store.ResetUsage(c.Request.Context(), req.UserID, today); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	// Premium users have no effective limit; render it as null the way the
	// client expects.
	var limit any
	canRequest := true
	if user.Subscription != models.SubscriptionPremium {
		limit = FreeDailyLimit
		canRequest = count < FreeDailyLimit
	}

	c.JSON(http.StatusOK, gin.H{
		"count":      count,
		"limit":      limit,
		"canRequest": canRequest,
	})
}

// IncrementUsage records one consumed request. This is the legacy second step
// of the two-step check/increment contract; the AI endpoints use the atomic
// reservation instead.
func (s *Server) IncrementUsage(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing userId"})
		return
	}

	if err := s.store.IncrementUsage(c.Request.Context(), req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type upgradeRequest struct {
	UserID int64  `json:"userId" binding:"required"`
	Plan   string `json:"plan" binding:"required,oneof=monthly yearly"`
}

// UpgradeSubscription sets the premium tier. The plan label is informational
// only; no billing occurs.
func (s *Server) UpgradeSubscription(c *gin.Context) {
	var req upgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and a monthly or yearly plan are required"})
		return
	}

	user, err := s.store.UpgradeSubscription(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListTasks returns the user's planner entries, deadline ascending.
func (s *Server) ListTasks(c *gin.Context) {
	userID, err := parseID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	tasks, err := s.store.ListTasks(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type createTaskRequest struct {
	UserID   int64           `json:"userId" binding:"required"`
	Name     string          `json:"name" binding:"required"`
	Subject  string          `json:"subject" binding:"required"`
	Deadline string          `json:"deadline" binding:"required"`
	Priority models.Priority `json:"priority" binding:"required,oneof=low medium high"`
}

func (s *Server) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId, name, subject, deadline and priority are required"})
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), models.Task{
		UserID:   req.UserID,
		Name:     req.Name,
		Subject:  req.Subject,
		Deadline: req.Deadline,
		Priority: req.Priority,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

type toggleTaskRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// ToggleTask sets a task's completion flag.
func (s *Server) ToggleTask(c *gin.Context) {
	taskID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req toggleTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing completed flag"})
		return
	}

	if err := s.store.SetTaskCompleted(c.Request.Context(), taskID, *req.Completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListHistory returns the user's 20 most recent AI interactions, newest first.
func (s *Server) ListHistory(c *gin.Context) {
	userID, err := parseID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	history, err := s.store.ListHistory(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, history)
}

type appendHistoryRequest struct {
	UserID   int64  `json:"userId" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=assignment research explainer"`
	Query    string `json:"query" binding:"required"`
	Response string `json:"response" binding:"required"`
}

// AppendHistory records one interaction on behalf of the client.
func (s *Server) AppendHistory(c *gin.Context) {
	var req appendHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId, type, query and response are required"})
		return
	}

	err := s.store.AppendHistory(c.Request.Context(), models.HistoryItem{
		UserID:   req.UserID,
		Type:     req.Type,
		Query:    req.Query,
		Response: req.Response,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
