package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/payetonkawa/catalog-service/internal/account/service"
)

const (
	MsgNotAuthenticated = "L'utilisateur n'est pas authentifié."

	// TokenQueryParam is the query parameter accepted when no Authorization
	// header is sent.
	TokenQueryParam = "token_Authentification"

	// AccountIDKey holds the authenticated account id in the gin context.
	AccountIDKey = "accountID"
)

// RequireToken aborts with 401 unless the request carries a token known to
// gate. Missing and invalid tokens get the same answer.
func RequireToken(gate service.AccessGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred, err := gate.Validate(c.Request.Context(), BearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, MsgNotAuthenticated)
			return
		}
		c.Set(AccountIDKey, cred.AccountID)
		c.Next()
	}
}

// BearerToken extracts the presented token. The Authorization header takes
// precedence over the query parameter.
func BearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Query(TokenQueryParam)
}
