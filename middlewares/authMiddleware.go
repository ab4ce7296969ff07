package middlewares

import (
	"context"
	"net/http"
	"strings"

	"bitbucket.org/lanefocus/freight_backend/utils"
	"github.com/gin-gonic/gin"
)

type authString string

// AuthMiddleware validates a JWT bearer token. It coexists with
// SessionMiddleware: service callers authenticate with JWT while the
// operator UI uses redis-backed session tokens.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		customClaim, _ := validate.Claims.(*utils.JwtCustomClaim)

		ctx := context.WithValue(c.Request.Context(), authString("auth"), customClaim)
		if customClaim != nil && customClaim.Username != "" {
			ctx = utils.SetUsernameInContext(ctx, customClaim.Username)
			ctx = utils.SetUserIdInContext(ctx, customClaim.ID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func CtxValue(ctx context.Context) *utils.JwtCustomClaim {
	raw, _ := ctx.Value(authString("auth")).(*utils.JwtCustomClaim)
	return raw
}
