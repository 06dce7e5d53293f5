package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/labstack/echo/v4"
)

// TokenService is the part of services.TokenService the handlers use.
type TokenService interface {
	Rotate(ctx context.Context, refreshToken string) (*services.TokenPair, *models.Identity, error)
	Revoke(ctx context.Context, refreshToken string) error
	VerifyAccess(accessToken string) (*auth.Claims, bool)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RevokeRequest is not validated: logout succeeds for any input.
type RevokeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type IntrospectRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

type UserResponse struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
	Email string   `json:"email"`
}

type RefreshResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type ClaimsResponse struct {
	Active bool     `json:"active"`
	Sub    string   `json:"sub,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	Email  string   `json:"email,omitempty"`
	Exp    int64    `json:"exp,omitempty"`
}

type TokenHandler struct {
	tokens TokenService
}

func NewTokenHandler(tokens TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// RegisterRoutes mounts the token endpoints on g.
func (h *TokenHandler) RegisterRoutes(g *echo.Group) {
	tokens := g.Group("/tokens")
	tokens.POST("/refresh", h.refresh)
	tokens.POST("/revoke", h.revoke)
	tokens.POST("/introspect", h.introspect)

	g.GET("/me", h.me, h.requireAccessToken)
}

func (h *TokenHandler) refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, identity, err := h.tokens.Rotate(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         UserResponse{ID: identity.ID, Roles: identity.Roles, Email: identity.Email},
	})
}

func (h *TokenHandler) revoke(c echo.Context) error {
	var req RevokeRequest
	_ = c.Bind(&req)

	if err := h.tokens.Revoke(c.Request().Context(), req.RefreshToken); err != nil {
		loggerFrom(c).Error(c.Request().Context(), "revoke failed", "error", err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TokenHandler) introspect(c echo.Context) error {
	var req IntrospectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	claims, ok := h.tokens.VerifyAccess(req.AccessToken)
	if !ok {
		return c.JSON(http.StatusOK, ClaimsResponse{Active: false})
	}
	return c.JSON(http.StatusOK, claimsResponse(claims))
}

func (h *TokenHandler) me(c echo.Context) error {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return c.JSON(http.StatusOK, claimsResponse(claims))
}

const claimsKey = "claims"

// requireAccessToken resolves "Authorization: Bearer <token>" into claims.
func (h *TokenHandler) requireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if !ok || token == "" {
			return sendAPIError(c, http.StatusUnauthorized, codeUnauthenticated, "missing bearer token", nil)
		}

		claims, ok := h.tokens.VerifyAccess(token)
		if !ok {
			return sendAPIError(c, http.StatusUnauthorized, codeInvalidToken, "invalid access token", nil)
		}

		c.Set(claimsKey, claims)
		return next(c)
	}
}

func claimsResponse(claims *auth.Claims) ClaimsResponse {
	resp := ClaimsResponse{
		Active: true,
		Sub:    claims.Subject,
		Roles:  claims.Roles,
		Email:  claims.Email,
	}
	if claims.ExpiresAt != nil {
		resp.Exp = claims.ExpiresAt.Unix()
	}
	return resp
}
