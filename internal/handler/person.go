package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/streamapp/stream-platform/internal/crypt"
	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/repository"
	"github.com/streamapp/stream-platform/internal/utils"
)

// PersonHandler serves the cast and crew catalog. Photo URLs are stored
// encrypted like video URLs but decrypt for every caller.
type PersonHandler struct {
	Persons *repository.PersonRepo
	Cipher  *crypt.FieldCipher
}

func NewPersonHandler(persons *repository.PersonRepo, cipher *crypt.FieldCipher) *PersonHandler {
	return &PersonHandler{Persons: persons, Cipher: cipher}
}

type personReq struct {
	Name       string `json:"name" validate:"required,max=128"`
	Surname    string `json:"surname" validate:"required,max=128"`
	Patronymic string `json:"patronymic" validate:"max=128"`
	Slug       string `json:"slug"`
	Photo      string `json:"photo"`
}

type personView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Patronymic string `json:"patronymic,omitempty"`
	Slug       string `json:"slug"`
	Photo      string `json:"photo,omitempty"`
}

func (h *PersonHandler) view(p model.Person) (personView, error) {
	photo := ""
	if len(p.Photo) > 0 {
		plain, err := h.Cipher.Decrypt(p.Photo, p.PhotoIV)
		if err != nil {
			return personView{}, err
		}
		photo = plain
	}
	return personView{
		ID: p.ID, Name: p.Name, Surname: p.Surname,
		Patronymic: p.Patronymic, Slug: p.Slug, Photo: photo,
	}, nil
}

func (h *PersonHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	persons, err := h.Persons.List(ctx, c.QueryParam("searchTerm"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]personView, 0, len(persons))
	for _, p := range persons {
		view, err := h.view(p)
		if err != nil {
			return fail(c, err)
		}
		out = append(out, view)
	}
	return ok(c, out)
}

func (h *PersonHandler) BySlug(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Persons.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(c, err)
	}
	view, err := h.view(p)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

// ----- admin -----

func (h *PersonHandler) GetByID(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Persons.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	view, err := h.view(p)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

func (h *PersonHandler) Create(c echo.Context) error {
	var req personReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	p := model.Person{
		Name:       req.Name,
		Surname:    req.Surname,
		Patronymic: req.Patronymic,
		Slug:       utils.Slugify(req.Slug),
	}
	if p.Slug == "" {
		p.Slug = utils.Slugify(req.Name + " " + req.Surname)
	}
	if req.Photo != "" {
		var err error
		if p.Photo, p.PhotoIV, err = h.Cipher.Encrypt(req.Photo); err != nil {
			return fail(c, err)
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Persons.Create(ctx, p)
	if err != nil {
		return fail(c, err)
	}
	view, err := h.view(p)
	if err != nil {
		return fail(c, err)
	}
	return created(c, view)
}

func (h *PersonHandler) Update(c echo.Context) error {
	var req personReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Persons.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	p.Name = req.Name
	p.Surname = req.Surname
	p.Patronymic = req.Patronymic
	if req.Slug != "" {
		p.Slug = utils.Slugify(req.Slug)
	}
	if req.Photo != "" {
		if p.Photo, p.PhotoIV, err = h.Cipher.Encrypt(req.Photo); err != nil {
			return fail(c, err)
		}
	}
	if err := h.Persons.Update(ctx, p); err != nil {
		return fail(c, err)
	}
	view, err := h.view(p)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

func (h *PersonHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Persons.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "deleted"})
}
