package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/streamapp/stream-platform/internal/crypt"
	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/repository"
	"github.com/streamapp/stream-platform/internal/service"
	"github.com/streamapp/stream-platform/internal/utils"
)

// GenreHandler serves the public genre catalog and the admin CRUD.
type GenreHandler struct {
	Genres *repository.GenreRepo
	Cipher *crypt.FieldCipher
}

func NewGenreHandler(genres *repository.GenreRepo, cipher *crypt.FieldCipher) *GenreHandler {
	return &GenreHandler{Genres: genres, Cipher: cipher}
}

type genreReq struct {
	Name        string `json:"name" validate:"required,max=128"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type collectionView struct {
	service.GenreView
	Poster      string `json:"poster"`
	MoviesCount int    `json:"moviesCount"`
}

func toGenreView(g model.Genre) service.GenreView {
	return service.GenreView{ID: g.ID, Name: g.Name, Slug: g.Slug, Description: g.Description, Icon: g.Icon}
}

// List returns genres filtered by the searchTerm query parameter.
func (h *GenreHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	genres, err := h.Genres.List(ctx, c.QueryParam("searchTerm"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]service.GenreView, 0, len(genres))
	for _, g := range genres {
		out = append(out, toGenreView(g))
	}
	return ok(c, out)
}

func (h *GenreHandler) BySlug(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	g, err := h.Genres.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, toGenreView(g))
}

// Collections returns each genre with a representative movie poster,
// decrypted for display.
func (h *GenreHandler) Collections(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Genres.Collections(ctx)
	if err != nil {
		return fail(c, err)
	}
	out := make([]collectionView, 0, len(rows))
	for _, row := range rows {
		poster := ""
		if len(row.Poster) > 0 {
			plain, err := h.Cipher.Decrypt(row.Poster, row.PosterIV)
			if err != nil {
				return fail(c, err)
			}
			poster = plain
		}
		out = append(out, collectionView{
			GenreView:   toGenreView(row.Genre),
			Poster:      poster,
			MoviesCount: row.SampleMovies,
		})
	}
	return ok(c, out)
}

// ----- admin -----

func (h *GenreHandler) GetByID(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	g, err := h.Genres.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, toGenreView(g))
}

func (h *GenreHandler) Create(c echo.Context) error {
	var req genreReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	if req.Slug == "" {
		req.Slug = utils.Slugify(req.Name)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	g, err := h.Genres.Create(ctx, model.Genre{
		Name: req.Name, Slug: utils.Slugify(req.Slug),
		Description: req.Description, Icon: req.Icon,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, toGenreView(g))
}

func (h *GenreHandler) Update(c echo.Context) error {
	var req genreReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	g, err := h.Genres.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	g.Name = req.Name
	if req.Slug != "" {
		g.Slug = utils.Slugify(req.Slug)
	}
	g.Description = req.Description
	g.Icon = req.Icon
	if err := h.Genres.Update(ctx, g); err != nil {
		return fail(c, err)
	}
	return ok(c, toGenreView(g))
}

func (h *GenreHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Genres.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "deleted"})
}
