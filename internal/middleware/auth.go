package middleware

import (
	"context"
	"net/http"
	"net/url"

	"ama/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// CurrentUserKey holds the *models.User of the signed-in visitor in the gin context.
	CurrentUserKey = "user"
	// SessionUserKey is the cookie session field carrying the user id.
	SessionUserKey = "user_id"
)

type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// LoadUser resolves the cookie session to a user. Unknown ids are dropped
// from the session so a deleted account logs out cleanly.
func LoadUser(users UserLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(SessionUserKey).(string)
		if !ok || userID == "" {
			c.Next()
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		switch {
		case err != nil:
			logger.Warn("load user failed", zap.String("user_id", userID), zap.Error(err))
		case user == nil:
			session.Delete(SessionUserKey)
			_ = session.Save()
		default:
			c.Set(CurrentUserKey, user)
		}
		c.Next()
	}
}

// AuthRequired sends anonymous visitors to the login page and brings them
// back afterwards.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			target := "/login?redirect=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the signed-in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
