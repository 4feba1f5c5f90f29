package handler

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/streamapp/stream-platform/internal/config"
	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/repository"
	"github.com/streamapp/stream-platform/internal/service"
	"github.com/streamapp/stream-platform/internal/utils"
)

// UserHandler serves the profile endpoints and the admin user CRUD.
type UserHandler struct {
	Cfg       config.Config
	Users     *repository.UserRepo
	Favorites *repository.FavoriteRepo
	Orders    *repository.OrderRepo
	Movies    *repository.MovieRepo
	Project   *service.Projector
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, favorites *repository.FavoriteRepo,
	orders *repository.OrderRepo, movies *repository.MovieRepo, project *service.Projector) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Favorites: favorites, Orders: orders, Movies: movies, Project: project}
}

type updateProfileReq struct {
	Login    string `json:"login" validate:"omitempty,min=3,max=64"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,min=5,max=32"`
	Password string `json:"password" validate:"omitempty,min=6,max=128"`
}

type adminUpdateUserReq struct {
	updateProfileReq
	IsAdmin *bool `json:"isAdmin"`
}

type toggleFavoriteReq struct {
	VideoID string `json:"videoId" validate:"required"`
}

// Profile returns the authenticated user.
func (h *UserHandler) Profile(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, toUserPart(u))
}

// UpdateProfile merges the submitted fields into the caller's row.
// Empty fields keep their stored value.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if err := h.applyProfile(&u, req); err != nil {
		return fail(c, err)
	}
	if err := h.Users.Update(ctx, u); err != nil {
		return fail(c, err)
	}
	return ok(c, toUserPart(u))
}

func (h *UserHandler) applyProfile(u *model.User, req updateProfileReq) error {
	if req.Login != "" {
		u.Login = strings.TrimSpace(req.Login)
	}
	if req.Email != "" {
		u.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Phone != "" {
		u.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	return nil
}

// ListFavorites lists the caller's favorited videos. Movies come back
// as full catalog views; episode ids are returned as-is.
func (h *UserHandler) ListFavorites(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	ids, err := h.Favorites.IDs(ctx, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}

	movies := make([]service.MovieView, 0, len(ids))
	for _, id := range ids {
		row, err := h.Movies.GetByVideoID(ctx, id)
		if err == repository.ErrNotFound {
			continue // episode favorite, listed by id only
		}
		if err != nil {
			return fail(c, err)
		}
		view, err := h.Project.Movie(row, nil, nil, nil, false)
		if err != nil {
			return fail(c, err)
		}
		movies = append(movies, view)
	}
	return ok(c, echo.Map{"videoIds": ids, "movies": movies})
}

// ToggleFavorite adds the video to favorites or removes it when already
// present.
func (h *UserHandler) ToggleFavorite(c echo.Context) error {
	var req toggleFavoriteReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	favorited, err := h.Favorites.Toggle(ctx, currentUserID(c), req.VideoID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"videoId": req.VideoID, "favorited": favorited})
}

type orderView struct {
	ID          string    `json:"id"`
	Sum         float64   `json:"sum"`
	OrderDate   time.Time `json:"orderDate"`
	SubscribeID string    `json:"subscribeId,omitempty"`
	SerialID    string    `json:"serialId,omitempty"`
	MovieID     string    `json:"movieId,omitempty"`
}

// ListOrders returns the caller's purchase history.
func (h *UserHandler) ListOrders(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderView{
			ID: o.ID, Sum: o.Sum, OrderDate: o.OrderDate,
			SubscribeID: o.SubscribeID, SerialID: o.SerialID, MovieID: o.MovieID,
		})
	}
	return ok(c, out)
}

// ----- admin -----

type adminCreateUserReq struct {
	Login    string `json:"login" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=5,max=32"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Create lets an admin provision a user directly, admin flag included.
func (h *UserHandler) Create(c echo.Context) error {
	var req adminCreateUserReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, err)
	}
	u, err := h.Users.Create(ctx,
		strings.TrimSpace(req.Login),
		strings.ToLower(strings.TrimSpace(req.Email)),
		strings.TrimSpace(req.Phone),
		hash, req.IsAdmin)
	if err != nil {
		return fail(c, err)
	}
	return created(c, toUserPart(u))
}

// Count returns the total number of registered users.
func (h *UserHandler) Count(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	count, err := h.Users.Count(ctx)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"count": count})
}

// List returns every user together with the total count.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	count, err := h.Users.Count(ctx)
	if err != nil {
		return fail(c, err)
	}
	parts := make([]userPart, 0, len(users))
	for _, u := range users {
		parts = append(parts, toUserPart(u))
	}
	return ok(c, echo.Map{"users": parts, "count": count})
}

func (h *UserHandler) GetByID(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, toUserPart(u))
}

// Update lets an admin edit any user, including the admin flag.
func (h *UserHandler) Update(c echo.Context) error {
	var req adminUpdateUserReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	if err := h.applyProfile(&u, req.updateProfileReq); err != nil {
		return fail(c, err)
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}
	if err := h.Users.Update(ctx, u); err != nil {
		return fail(c, err)
	}
	return ok(c, toUserPart(u))
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "deleted"})
}
