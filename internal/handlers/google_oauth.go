package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateKey      = "oauth_state"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleCallbackPath = "/auth/google/callback"
)

// GoogleOAuth performs the authorization-code flow against Google.
type GoogleOAuth struct {
	config      *oauth2.Config
	userInfoURL string
}

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

func NewGoogleOAuth(clientID, clientSecret, siteURL string) *GoogleOAuth {
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  strings.TrimRight(siteURL, "/") + googleCallbackPath,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// FetchUser exchanges code for a token and loads the profile with it.
func (g *GoogleOAuth) FetchUser(ctx context.Context, code string) (*GoogleUserInfo, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &info, nil
}

func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GoogleLogin starts the OAuth flow.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		NotFound(c)
		return
	}

	state, err := generateStateToken()
	if err != nil {
		renderFailure(c, h.logger, err)
		return
	}

	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	if err := session.Save(); err != nil {
		renderFailure(c, h.logger, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.google.config.AuthCodeURL(state))
}

// GoogleCallback finishes the flow and signs the user in, creating the account on first visit.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		NotFound(c)
		return
	}

	session := sessions.Default(c)
	savedState, _ := session.Get(oauthStateKey).(string)
	if savedState == "" || c.Query("state") != savedState {
		h.renderLogin(c, http.StatusBadRequest, gin.H{"Error": "Invalid login state, please try again."})
		return
	}
	session.Delete(oauthStateKey)

	code := c.Query("code")
	if code == "" {
		h.renderLogin(c, http.StatusBadRequest, gin.H{"Error": "Google did not return an authorization code."})
		return
	}

	info, err := h.google.FetchUser(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("google login failed", zap.Error(err))
		h.renderLogin(c, http.StatusBadGateway, gin.H{"Error": "Could not sign in with Google."})
		return
	}
	if !info.VerifiedEmail {
		h.renderLogin(c, http.StatusBadRequest, gin.H{"Error": "Your Google email is not verified."})
		return
	}

	name := info.GivenName
	if name == "" {
		name = strings.Split(info.Email, "@")[0]
	}
	user, err := h.accounts.GoogleLogin(c.Request.Context(), info.ID, name)
	if err != nil {
		status, message := failureStatus(c, h.logger, err)
		h.renderLogin(c, status, gin.H{"Error": message})
		return
	}

	h.signIn(c, user, "/sessions")
}
