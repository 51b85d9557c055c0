package app

import (
	"context"
	"encoding/json"

	"github.com/Jason121485/StudyMate-AI/app/models"
	"github.com/Jason121485/StudyMate-AI/googleauth"
)

// AIClient is the facade surface the AI endpoints depend on.
type AIClient interface {
	AssignmentHelp(ctx context.Context, subject, topic, instructions string, grade models.GradeLevel) (json.RawMessage, error)
	ResearchAssistance(ctx context.Context, topic string) (json.RawMessage, error)
	StudyExplanation(ctx context.Context, topic string, difficulty models.Difficulty) (string, error)
}

// Server holds the injected collaborators for every request handler.
type Server struct {
	store    Store
	ai       AIClient
	google   *googleauth.Client
	verifier *googleauth.Verifier
	appURL   string
}

func NewServer(store Store, ai AIClient, google *googleauth.Client, verifier *googleauth.Verifier, appURL string) *Server {
	return &Server{
		store:    store,
		ai:       ai,
		google:   google,
		verifier: verifier,
		appURL:   appURL,
	}
}
