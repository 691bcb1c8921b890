// Package auth decodes storefront session tokens into domain.JwtPayload.
//
// Tokens are issued by the auth backend. The gateway decodes them to
// attribute requests and display the session; Verify additionally checks an
// HS256 signature when a shared secret is configured.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/domain"
)

// CodeInvalidToken is the APIError code for every token failure.
const CodeInvalidToken = "invalid_token"

// Decode reads the token's claims without checking its signature or expiry.
func Decode(token string) (*domain.JwtPayload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalid("token is empty", nil)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, invalid("token is malformed", err)
	}
	return payloadFrom(claims)
}

// Verify checks an HS256 signature with secret and the standard time claims,
// then decodes the payload. An empty secret falls back to Decode.
func Verify(token, secret string) (*domain.JwtPayload, error) {
	if secret == "" {
		return Decode(token)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalid("token is empty", nil)
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, invalid("token has expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, invalid("token signature is invalid", err)
	case err != nil:
		return nil, invalid("token is invalid", err)
	case tok == nil || !tok.Valid:
		return nil, invalid("token is invalid", nil)
	}
	return payloadFrom(claims)
}

func invalid(msg string, cause error) *apierror.APIError {
	var details any
	if cause != nil {
		details = cause
	}
	return apierror.New(msg, http.StatusUnauthorized, CodeInvalidToken, details)
}

func payloadFrom(claims jwt.MapClaims) (*domain.JwtPayload, error) {
	p := &domain.JwtPayload{}

	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, invalid("iat claim is malformed", err)
	}
	if iat != nil {
		p.IssuedAt = iat.Time
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, invalid("exp claim is malformed", err)
	}
	if exp != nil {
		p.ExpiresAt = exp.Time
	}

	sub, _ := claims.GetSubject()
	p.UserID = sub
	if p.UserID == "" {
		p.UserID = scalar(claims["id"])
	}
	if p.UserID == "" {
		p.UserID = scalar(claims["userId"])
	}
	p.Username = scalar(claims["username"])
	p.Role = scalar(claims["role"])
	p.Permissions = stringList(claims["permissions"])
	return p, nil
}

// scalar renders string and numeric claims as text.
func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// stringList accepts an array claim or a single space or comma separated string.
func stringList(v any) []string {
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s := scalar(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.FieldsFunc(x, func(r rune) bool { return r == ',' || r == ' ' })
	}
	return nil
}
