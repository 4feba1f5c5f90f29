package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/repository"
)

// CountryHandler serves the country reference data and its admin CRUD.
type CountryHandler struct {
	Countries *repository.CountryRepo
}

func NewCountryHandler(countries *repository.CountryRepo) *CountryHandler {
	return &CountryHandler{Countries: countries}
}

type countryReq struct {
	Name  string `json:"name" validate:"required,max=128"`
	Group string `json:"group" validate:"required,max=128"`
}

type countryView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GroupID string `json:"groupId"`
}

func toCountryView(c model.Country) countryView {
	return countryView{ID: c.ID, Name: c.Name, GroupID: c.GroupID}
}

func (h *CountryHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	countries, err := h.Countries.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	out := make([]countryView, 0, len(countries))
	for _, country := range countries {
		out = append(out, toCountryView(country))
	}
	return ok(c, out)
}

func (h *CountryHandler) GetByID(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	country, err := h.Countries.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, toCountryView(country))
}

// Create adds a country inside its group, creating the group row on
// first use.
func (h *CountryHandler) Create(c echo.Context) error {
	var req countryReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	groupID, err := h.Countries.EnsureGroup(ctx, req.Group)
	if err != nil {
		return fail(c, err)
	}
	country, err := h.Countries.Create(ctx, model.Country{Name: req.Name, GroupID: groupID})
	if err != nil {
		return fail(c, err)
	}
	return created(c, toCountryView(country))
}

func (h *CountryHandler) Update(c echo.Context) error {
	var req countryReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	country, err := h.Countries.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	country.Name = req.Name
	if req.Group != "" {
		if country.GroupID, err = h.Countries.EnsureGroup(ctx, req.Group); err != nil {
			return fail(c, err)
		}
	}
	if err := h.Countries.Update(ctx, country); err != nil {
		return fail(c, err)
	}
	return ok(c, toCountryView(country))
}

func (h *CountryHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Countries.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "deleted"})
}
