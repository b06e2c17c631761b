package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Baragji/Blueprint-creator/internal/domain"
	"github.com/Baragji/Blueprint-creator/internal/session"
	"github.com/Baragji/Blueprint-creator/internal/token"
)

const (
	profileKey      = "authProfile"
	accessClaimsKey = "accessClaims"
	rawTokenKey     = "accessToken"
)

// Auth validates Authorization headers and attaches the caller's profile.
type Auth struct {
	Codec    *token.Codec
	Sessions *session.Manager
}

// RequireAuth ensures the request carries a valid, non-blacklisted bearer
// token. Expired tokens get their own code so clients know to refresh.
func (m *Auth) RequireAuth(c *gin.Context) {
	claims, raw, err := m.authenticate(c)
	if err != nil {
		code := domain.CodeInvalidToken
		message := "Invalid or missing access token."
		if errors.Is(err, domain.ErrTokenExpired) {
			code = domain.CodeTokenExpired
			message = "Access token has expired."
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"code":    code,
			"message": message,
		})
		return
	}
	attach(c, claims, raw)
	c.Next()
}

// OptionalAuth attaches the profile when a valid token is present but never
// rejects the request.
func (m *Auth) OptionalAuth(c *gin.Context) {
	if claims, raw, err := m.authenticate(c); err == nil {
		attach(c, claims, raw)
	}
	c.Next()
}

// RequirePermissions rejects authenticated callers that lack any of the
// required permissions. It must run after RequireAuth.
func (m *Auth) RequirePermissions(required ...domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := GetProfile(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"code":    domain.CodeInvalidToken,
				"message": "Authentication required.",
			})
			return
		}
		if !profile.HasPermissions(required...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"code":    domain.CodeInsufficientPermissions,
				"message": "Insufficient permissions.",
			})
			return
		}
		c.Next()
	}
}

func (m *Auth) authenticate(c *gin.Context) (*token.AccessClaims, string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, "", domain.ErrInvalidToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, "", domain.ErrInvalidToken
	}
	claims, err := m.Codec.VerifyAccess(parts[1])
	if err != nil {
		return nil, "", err
	}
	if m.Sessions.IsBlacklisted(c.Request.Context(), claims.ID) {
		return nil, "", domain.ErrInvalidToken
	}
	return claims, parts[1], nil
}

func attach(c *gin.Context, claims *token.AccessClaims, raw string) {
	c.Set(accessClaimsKey, claims)
	c.Set(rawTokenKey, raw)
	c.Set(profileKey, domain.UserProfile{
		ID:             claims.Subject,
		Email:          claims.Email,
		Role:           claims.Role,
		OrganizationID: claims.OrganizationID,
		Permissions:    claims.Permissions,
	})
}

// GetProfile exposes the authenticated caller's profile to handlers.
func GetProfile(c *gin.Context) (domain.UserProfile, bool) {
	value, ok := c.Get(profileKey)
	if !ok {
		return domain.UserProfile{}, false
	}
	profile, ok := value.(domain.UserProfile)
	return profile, ok
}

// GetAccessClaims exposes the raw access token claims to handlers.
func GetAccessClaims(c *gin.Context) (*token.AccessClaims, bool) {
	value, ok := c.Get(accessClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*token.AccessClaims)
	return claims, ok
}

// GetRawToken returns the bearer token string the request authenticated with.
func GetRawToken(c *gin.Context) (string, bool) {
	value, ok := c.Get(rawTokenKey)
	if !ok {
		return "", false
	}
	raw, ok := value.(string)
	return raw, ok
}
