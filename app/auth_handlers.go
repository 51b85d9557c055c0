// Package app provides identity bootstrap endpoints for local credentials and
// Google OAuth.
package app

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// Login resolves a local credential to a user row, creating one on first
// sight. Returning users must present the password their hash was created
// from; the display name defaults to the email's local part.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(user.Credential), []byte(req.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, user)
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := req.Name
	if name == "" {
		name = localPart(req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	user, err = s.store.CreateUser(c.Request.Context(), req.Email, string(hash), name, todayUTC(time.Now()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GoogleAuthURL builds the consent URL for the supplied redirect URI.
func (s *Server) GoogleAuthURL(c *gin.Context) {
	if s.google == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "oauth not configured"})
		return
	}

	redirectURI := c.Query("redirect_uri")
	if redirectURI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing redirect_uri"})
		return
	}

	url := s.google.AuthCodeURL(redirectURI, uuid.NewString())
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GoogleCallback exchanges the authorization code, verifies the ID token,
// resolves or creates the user row, and hands the result back to the opener
// window before closing the popup.
func (s *Server) GoogleCallback(c *gin.Context) {
	if s.google == nil || s.verifier == nil {
		c.String(http.StatusInternalServerError, "Authentication failed: oauth not configured")
		return
	}

	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "Authentication failed: missing code")
		return
	}

	token, err := s.google.Exchange(c.Request.Context(), code, strings.TrimRight(s.appURL, "/")+"/auth/callback")
	if err != nil {
		log.Printf("google token exchange failed: %v", err)
		c.String(http.StatusInternalServerError, "Authentication failed: "+err.Error())
		return
	}

	profile, err := s.verifier.Verify(token.IDToken)
	if err != nil {
		log.Printf("google id token verification failed: %v", err)
		c.String(http.StatusInternalServerError, "Authentication failed: "+err.Error())
		return
	}

	user, err := s.store.GetUserByEmail(c.Request.Context(), profile.Email)
	if errors.Is(err, sql.ErrNoRows) {
		// Synthetic credential marker; it can never match a bcrypt compare,
		// so password login against an OAuth account is rejected.
		user, err = s.store.CreateUser(
			c.Request.Context(),
			profile.Email,
			"google_"+profile.Subject,
			profile.Name,
			todayUTC(time.Now()),
		)
	}
	if err != nil {
		log.Printf("google user bootstrap failed email=%s err=%v", profile.Email, err)
		c.String(http.StatusInternalServerError, "Authentication failed: "+err.Error())
		return
	}

	payload, err := json.Marshal(user)
	if err != nil {
		c.String(http.StatusInternalServerError, "Authentication failed: "+err.Error())
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, callbackPage(payload))
}

func callbackPage(user []byte) string {
	return fmt.Sprintf(`<html>
  <body>
    <script>
      if (window.opener) {
        window.opener.postMessage({ type: 'OAUTH_AUTH_SUCCESS', user: %s }, '*');
        window.close();
      } else {
        window.location.href = '/';
      }
    </script>
    <p>Authentication successful. This window should close automatically.</p>
  </body>
</html>`, user)
}
