package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Baragji/Blueprint-creator/internal/domain"
	"github.com/Baragji/Blueprint-creator/internal/http/middleware"
	"github.com/Baragji/Blueprint-creator/internal/service"
	"github.com/Baragji/Blueprint-creator/internal/token"
)

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	Auth  *service.AuthService
	Codec *token.Codec
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(auth *service.AuthService, codec *token.Codec) *AuthHandler {
	return &AuthHandler{Auth: auth, Codec: codec}
}

type registerPayload struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	OrganizationName string `json:"organizationName"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

// Register creates an organization and its first user.
func (h *AuthHandler) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, &domain.AuthError{
			Code:    domain.CodeWeakPassword,
			Status:  http.StatusBadRequest,
			Message: "Invalid registration data",
		})
		return
	}

	result, err := h.Auth.Register(c.Request.Context(), service.RegisterRequest{
		Email:            payload.Email,
		Password:         payload.Password,
		FirstName:        payload.FirstName,
		LastName:         payload.LastName,
		OrganizationName: payload.OrganizationName,
	}, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":         result.User,
		"organization": result.Organization,
		"token":        result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	})
}

// Login authenticates an email/password pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, &domain.AuthError{
			Code:    domain.CodeInvalidCredentials,
			Status:  http.StatusBadRequest,
			Message: "Invalid login data",
		})
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), service.LoginRequest{
		Email:    payload.Email,
		Password: payload.Password,
	}, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         result.User,
		"organization": result.Organization,
		"token":        result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	})
}

// Refresh rotates a refresh token and returns a new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var payload refreshPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.RefreshToken == "" {
		respondError(c, &domain.AuthError{
			Code:    domain.CodeInvalidToken,
			Status:  http.StatusBadRequest,
			Message: "Missing refresh token",
		})
		return
	}

	pair, err := h.Auth.Refresh(c.Request.Context(), payload.RefreshToken, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout invalidates the caller's tokens server side. It always reports
// success so clients can discard state unconditionally.
func (h *AuthHandler) Logout(c *gin.Context) {
	var (
		userID         string
		refreshTokenID string
		accessJTI      string
	)

	if claims, ok := middleware.GetAccessClaims(c); ok {
		userID = claims.Subject
		accessJTI = claims.ID
	}

	var payload refreshPayload
	if err := c.ShouldBindJSON(&payload); err == nil && payload.RefreshToken != "" {
		if claims, err := h.Codec.VerifyRefresh(payload.RefreshToken); err == nil {
			refreshTokenID = claims.ID
			if userID == "" {
				userID = claims.Subject
			}
		}
	}

	if userID != "" || refreshTokenID != "" {
		h.Auth.Logout(c.Request.Context(), userID, refreshTokenID, accessJTI)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	profile, ok := middleware.GetProfile(c)
	if !ok {
		respondError(c, domain.ErrInvalidToken)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// respondError maps typed auth failures to their status and code; anything
// else becomes an opaque 500.
func respondError(c *gin.Context, err error) {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		c.JSON(authErr.Status, gin.H{
			"success": false,
			"code":    authErr.Code,
			"message": authErr.Message,
		})
		return
	}
	zap.L().Error("unhandled auth error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"code":    domain.CodeSessionStorageFailed,
		"message": "Internal server error",
	})
}
