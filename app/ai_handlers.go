package app

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/Jason121485/StudyMate-AI/app/models"

	"github.com/gin-gonic/gin"
)

type assignmentRequest struct {
	UserID       int64             `json:"userId" binding:"required"`
	Subject      string            `json:"subject" binding:"required"`
	Topic        string            `json:"topic" binding:"required"`
	Instructions string            `json:"instructions" binding:"required"`
	GradeLevel   models.GradeLevel `json:"gradeLevel" binding:"required,oneof=elementary 'high school' college graduate"`
}

// AssignmentHelp reserves quota, queries the AI provider for structured
// assignment help, and appends the interaction to the user's history.
func (s *Server) AssignmentHelp(c *gin.Context) {
	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId, subject, topic, instructions and gradeLevel are required"})
		return
	}

	user, ok := s.reserveUsage(c, req.UserID)
	if !ok {
		return
	}

	result, err := s.ai.AssignmentHelp(c.Request.Context(), req.Subject, req.Topic, req.Instructions, req.GradeLevel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.appendInteraction(c, req.UserID, models.HistoryTypeAssignment, req.Subject+": "+req.Topic, string(result))
	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"usage":  usageView(user),
	})
}

type researchRequest struct {
	UserID int64  `json:"userId" binding:"required"`
	Topic  string `json:"topic" binding:"required"`
}

// ResearchAssistance reserves quota and returns titles, questions, an outline
// and methodology suggestions for a research topic.
func (s *Server) ResearchAssistance(c *gin.Context) {
	var req researchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and topic are required"})
		return
	}

	user, ok := s.reserveUsage(c, req.UserID)
	if !ok {
		return
	}

	result, err := s.ai.ResearchAssistance(c.Request.Context(), req.Topic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.appendInteraction(c, req.UserID, models.HistoryTypeResearch, req.Topic, string(result))
	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"usage":  usageView(user),
	})
}

type explainRequest struct {
	UserID     int64             `json:"userId" binding:"required"`
	Topic      string            `json:"topic" binding:"required"`
	Difficulty models.Difficulty `json:"difficulty" binding:"required,oneof=simple detailed advanced"`
}

// StudyExplanation reserves quota and returns a free-text explanation at the
// requested difficulty.
func (s *Server) StudyExplanation(c *gin.Context) {
	var req explainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId, topic and difficulty are required"})
		return
	}

	user, ok := s.reserveUsage(c, req.UserID)
	if !ok {
		return
	}

	result, err := s.ai.StudyExplanation(c.Request.Context(), req.Topic, req.Difficulty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.appendInteraction(c, req.UserID, models.HistoryTypeExplainer, req.Topic, result)
	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"usage":  usageView(user),
	})
}

// reserveUsage runs the atomic quota reservation and writes the error
// response itself when the request cannot proceed.
func (s *Server) reserveUsage(c *gin.Context, userID int64) (models.User, bool) {
	user, err := s.store.ReserveUsage(c.Request.Context(), userID)
	if err != nil {
		var qerr quotaError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.As(err, &qerr):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "daily request limit reached",
				"count": qerr.Used,
				"limit": qerr.Limit,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return models.User{}, false
	}
	return user, true
}

// appendInteraction logs history append failures instead of failing the
// request; the user already consumed quota and holds a response.
func (s *Server) appendInteraction(c *gin.Context, userID int64, kind, query, response string) {
	err := s.store.AppendHistory(c.Request.Context(), models.HistoryItem{
		UserID:   userID,
		Type:     kind,
		Query:    query,
		Response: response,
	})
	if err != nil {
		log.Printf("history append failed user=%d type=%s err=%v", userID, kind, err)
	}
}

func usageView(user models.User) gin.H {
	var limit any
	if user.Subscription != models.SubscriptionPremium {
		limit = FreeDailyLimit
	}
	return gin.H{
		"count": user.RequestCount,
		"limit": limit,
	}
}
