package handlers

import (
	"context"
	"net/http"
	"strings"

	"ama/internal/middleware"
	"ama/internal/models"
	"ama/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Accounts is the user store behind the auth pages.
type Accounts interface {
	Register(ctx context.Context, name, password string) (*models.User, error)
	Authenticate(ctx context.Context, name, password string) (*models.User, error)
	GoogleLogin(ctx context.Context, googleID, displayName string) (*models.User, error)
}

type AuthHandler struct {
	accounts Accounts
	captcha  *services.CaptchaService
	google   *GoogleOAuth
	logger   *zap.Logger
}

// NewAuthHandler wires the auth pages. google is nil when Google login is not configured.
func NewAuthHandler(accounts Accounts, captcha *services.CaptchaService, google *GoogleOAuth, logger *zap.Logger) *AuthHandler {
	registerValidators()
	return &AuthHandler{
		accounts: accounts,
		captcha:  captcha,
		google:   google,
		logger:   logger,
	}
}

// renderRegister issues a fresh captcha with every signup page.
func (h *AuthHandler) renderRegister(c *gin.Context, status int, data gin.H) {
	question, answer := h.captcha.Challenge()
	session := sessions.Default(c)
	session.Set(services.CaptchaSessionKey, answer)
	if err := session.Save(); err != nil {
		h.logger.Warn("save captcha", zap.Error(err))
	}

	if data == nil {
		data = gin.H{}
	}
	data["Captcha"] = question
	data["GoogleEnabled"] = h.google != nil
	Render(c, status, "auth/register.html", data)
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Redirect"] = safeRedirect(c.Query("redirect"))
	data["GoogleEnabled"] = h.google != nil
	Render(c, status, "auth/login.html", data)
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.renderRegister(c, http.StatusOK, nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegister(c, http.StatusBadRequest, gin.H{
			"Error": "Name must be 2 to 32 characters and the password at least 6.",
			"Name":  form.Name,
		})
		return
	}

	session := sessions.Default(c)
	if !h.captcha.Verify(session.Get(services.CaptchaSessionKey), form.Captcha) {
		h.renderRegister(c, http.StatusBadRequest, gin.H{"Error": "Wrong captcha answer", "Name": form.Name})
		return
	}
	session.Delete(services.CaptchaSessionKey)

	user, err := h.accounts.Register(c.Request.Context(), form.Name, form.Password)
	if err != nil {
		status, message := failureStatus(c, h.logger, err)
		h.renderRegister(c, status, gin.H{"Error": message, "Name": form.Name})
		return
	}

	h.signIn(c, user, "/sessions")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderLogin(c, http.StatusBadRequest, gin.H{"Error": "Name and password are required", "Name": form.Name})
		return
	}

	user, err := h.accounts.Authenticate(c.Request.Context(), form.Name, form.Password)
	if err != nil {
		status, message := failureStatus(c, h.logger, err)
		h.renderLogin(c, status, gin.H{"Error": message, "Name": form.Name})
		return
	}

	h.signIn(c, user, c.PostForm("redirect"))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/sessions")
}

func (h *AuthHandler) signIn(c *gin.Context, user *models.User, redirect string) {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		renderFailure(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, safeRedirect(redirect))
}

// safeRedirect only allows local paths.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/sessions"
	}
	return target
}
