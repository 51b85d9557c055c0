package main

import (
	"log"

	"github.com/Jason121485/StudyMate-AI/app"
	"github.com/Jason121485/StudyMate-AI/app/config"
	"github.com/Jason121485/StudyMate-AI/googleauth"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	store := app.MustOpenStore(cfg)
	ai := app.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model)

	var (
		google   *googleauth.Client
		verifier *googleauth.Verifier
	)
	if cfg.Google.ClientID != "" && cfg.Google.ClientSecret != "" {
		google = googleauth.NewClient(cfg.Google.ClientID, cfg.Google.ClientSecret)
		verifier, err = googleauth.NewVerifier(cfg.Google.ClientID, "")
		if err != nil {
			log.Fatalf("failed to initialize google verifier: %v", err)
		}
	} else {
		log.Print("google oauth disabled: GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set")
	}

	server := app.NewServer(store, ai, google, verifier, cfg.AppURL)
	router := server.NewRouter()
	if err := router.Run("0.0.0.0:" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
