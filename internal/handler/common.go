// Package handler implements the HTTP endpoints. Each domain area gets
// its own handler struct bundling the repositories and services it
// needs; wiring happens in the router.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/streamapp/stream-platform/internal/apperr"
	"github.com/streamapp/stream-platform/internal/repository"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

var validate = validator.New()

// reqCtx derives a bounded context for repository calls.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// bindAndValidate decodes the JSON body into req and runs struct
// validation on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return apperr.Validation(errs[0].Field(), "failed on '"+errs[0].Tag()+"' validation")
		}
		return apperr.New(apperr.KindValidation, "invalid body")
	}
	return nil
}

// fail maps a domain error onto the JSON error envelope. Repository
// sentinels are translated first so handlers can pass them through
// untouched.
func fail(c echo.Context, err error) error {
	switch err {
	case repository.ErrNotFound:
		err = apperr.NotFound("not found")
	case repository.ErrConflict:
		err = apperr.Conflict("already exists")
	}
	return c.JSON(apperr.Status(err), apperr.Body(err))
}

// currentUserID returns the authenticated user's id, empty for
// anonymous callers on OptionalAuth routes.
func currentUserID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}

func currentRole(c echo.Context) string {
	if v, ok := c.Get("role").(string); ok {
		return v
	}
	return ""
}

func isAdmin(c echo.Context) bool { return currentRole(c) == RoleAdmin }

func ok(c echo.Context, body any) error      { return c.JSON(http.StatusOK, body) }
func created(c echo.Context, body any) error { return c.JSON(http.StatusCreated, body) }

// packageEntries reads a batch import request: a multipart form of
// uploaded files, each holding a JSON array of creation commands. All
// files are decoded fully before any entry is created.
func packageEntries[T any](c echo.Context) ([]T, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "multipart form with JSON files required")
	}
	var out []T
	for _, files := range form.File {
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				return nil, apperr.Validation("files", fh.Filename+" cannot be read")
			}
			var entries []T
			err = json.NewDecoder(f).Decode(&entries)
			f.Close()
			if err != nil {
				return nil, apperr.Validation("files", fh.Filename+" is not a JSON array")
			}
			out = append(out, entries...)
		}
	}
	if len(out) == 0 {
		return nil, apperr.New(apperr.KindValidation, "empty package")
	}
	return out, nil
}
