package middleware

import (
	"net/http"
	"strings"

	"freshfetch/models"
	"freshfetch/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
)

func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Success: false,
		Message: message,
	})
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		return "", true
	}
	return tokenParts[1], true
}

// AuthMiddleware accepts the session token from the Authorization header or the session cookie.
func AuthMiddleware(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromHeader := bearerToken(c)
		if fromHeader && token == "" {
			abortJSON(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}
		if !fromHeader {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie == "" {
				abortJSON(c, http.StatusUnauthorized, "Authentication required")
				return
			}
			token = cookie
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Invalid or expired token",
				Error:   err.Error(),
			})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller set by AuthMiddleware.
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	id := c.GetString(ctxUserID)
	if id == "" {
		return models.Principal{}, false
	}
	return models.Principal{
		UserID: id,
		Email:  c.GetString(ctxUserEmail),
		Role:   c.GetString(ctxUserRole),
	}, true
}

func RoleMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxUserRole)
		if !exists {
			abortJSON(c, http.StatusForbidden, "User role not found")
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		abortJSON(c, http.StatusForbidden, "Access denied. Required role: "+strings.Join(roles, " or "))
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(models.RoleAdmin)
}

func StaffMiddleware() gin.HandlerFunc {
	return RoleMiddleware(models.RoleAdmin, models.RoleManager)
}

// ReadOnlyMiddleware lets the listed demo accounts read but rejects every write they attempt.
func ReadOnlyMiddleware(emails []string) gin.HandlerFunc {
	blocked := make(map[string]bool, len(emails))
	for _, e := range emails {
		blocked[strings.ToLower(e)] = true
	}
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if blocked[strings.ToLower(c.GetString(ctxUserEmail))] {
			abortJSON(c, http.StatusForbidden, "This account is in view-only mode")
			return
		}
		c.Next()
	}
}
