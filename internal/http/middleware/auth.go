package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/auth"
	"github.com/tbourn/go-storefront-gateway/internal/dispatch"
	"github.com/tbourn/go-storefront-gateway/internal/domain"
)

const (
	userIDKey = "userID"
	claimsKey = "claims"
	tokenKey  = "bearerToken"
)

// BearerAuth decodes an optional "Authorization: Bearer <token>" header.
//
// Requests without the header pass through untouched; the backends decide
// which operations need a session. When the header is present the token must
// decode (and verify, when secret is non-empty) and must not be expired,
// otherwise the request is rejected with 401:
//
//	{"request_id": "<id>", "code": "invalid_token", "message": "..."}
//
// On success the user ID and claims are stored in the Gin context and the raw
// token is placed in the request context so dispatch forwards it upstream.
func BearerAuth(secret string) gin.HandlerFunc {
	return bearerAuth(secret, time.Now)
}

func bearerAuth(secret string, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := strings.TrimSpace(c.GetHeader("Authorization"))
		if h == "" {
			c.Next()
			return
		}
		scheme, token, _ := strings.Cut(h, " ")
		token = strings.TrimSpace(token)
		if !strings.EqualFold(scheme, "bearer") || token == "" {
			rejectToken(c, "scheme", "authorization header must use the Bearer scheme")
			return
		}

		claims, err := auth.Verify(token, secret)
		if err != nil {
			var ae *apierror.APIError
			msg := "token is invalid"
			if errors.As(err, &ae) {
				msg = ae.Message()
			}
			rejectToken(c, "invalid", msg)
			return
		}
		if claims.Expired(now()) {
			rejectToken(c, "expired", "token has expired")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(claimsKey, claims)
		c.Set(tokenKey, token)
		c.Request = c.Request.WithContext(dispatch.WithBearerToken(c.Request.Context(), token))
		c.Next()
	}
}

func rejectToken(c *gin.Context, reason, msg string) {
	authRejected.WithLabelValues(reason).Inc()
	LoggerFrom(c).Warn().Str("reason", reason).Msg("bearer token rejected")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": RequestIDFrom(c),
		"code":       auth.CodeInvalidToken,
		"message":    msg,
	})
}

// ClaimsFrom returns the claims stored by BearerAuth.
func ClaimsFrom(c *gin.Context) (*domain.JwtPayload, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*domain.JwtPayload)
	return p, ok && p != nil
}

// TokenFrom returns the raw bearer token accepted by BearerAuth, or "".
func TokenFrom(c *gin.Context) string {
	v, _ := c.Get(tokenKey)
	return asString(v)
}
