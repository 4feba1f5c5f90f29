package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/streamapp/stream-platform/internal/apperr"
	"github.com/streamapp/stream-platform/internal/config"
	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/repository"
	"github.com/streamapp/stream-platform/internal/utils"
)

const refreshCookieName = "refreshToken"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Login    string `json:"login" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=5,max=32"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type loginReq struct {
	// Identifier matches login, email or phone.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID      string `json:"id"`
	Login   string `json:"login"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	IsAdmin bool   `json:"isAdmin"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Login: u.Login, Email: u.Email, Phone: u.Phone, IsAdmin: u.IsAdmin}
}

func roleOf(u model.User) string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Register creates the user and returns a token pair immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	ctx, cancel := reqCtx(c)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, err)
	}
	u, err := h.Users.Create(ctx, req.Login, req.Email, req.Phone, hash, false)
	if err == repository.ErrConflict {
		return fail(c, apperr.Conflict("login, email or phone already taken"))
	}
	if err != nil {
		return fail(c, err)
	}
	return h.issuePair(c, u, http.StatusCreated)
}

// Login verifies the password against the user found by login, email or
// phone and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByIdentifier(ctx, strings.ToLower(strings.TrimSpace(req.Identifier)))
	if err == repository.ErrNotFound || (err == nil && !utils.VerifyPassword(u.PasswordHash, req.Password)) {
		// One message for both cases so the response does not leak
		// which identifiers exist.
		return fail(c, apperr.Unauthorized("invalid credentials"))
	}
	if err != nil {
		return fail(c, err)
	}
	return h.issuePair(c, u, http.StatusOK)
}

// Refresh exchanges a valid refresh token, taken from the cookie or the
// body, for a new pair. The old token is rotated out.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		var req refreshReq
		if err := c.Bind(&req); err == nil {
			raw = req.RefreshToken
		}
	}
	if raw == "" {
		return fail(c, apperr.Unauthorized("missing refresh token"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByRefreshHash(ctx, utils.HashRefreshRaw(raw))
	if err == repository.ErrNotFound {
		return fail(c, apperr.Unauthorized("invalid refresh token"))
	}
	if err != nil {
		return fail(c, err)
	}
	if time.Now().After(u.TokenExpires) {
		return fail(c, apperr.Unauthorized("refresh token expired"))
	}
	return h.issuePair(c, u, http.StatusOK)
}

// Logout drops the stored refresh token and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	// Epoch instead of the zero time: MySQL DATETIME cannot hold year 1.
	epoch := time.Unix(0, 0).UTC()
	if err := h.Users.StoreRefresh(ctx, currentUserID(c), "", epoch, epoch); err != nil {
		return fail(c, err)
	}
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return ok(c, echo.Map{"status": "logged out"})
}

func (h *AuthHandler) issuePair(c echo.Context, u model.User, status int) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, roleOf(u), h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	now := time.Now().UTC()
	if err := h.Users.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), now, refresh.Exp); err != nil {
		return fail(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    refresh.Raw,
		Path:     "/",
		Expires:  refresh.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(status, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}
