package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/streamapp/stream-platform/internal/apperr"
	"github.com/streamapp/stream-platform/internal/config"
	"github.com/streamapp/stream-platform/internal/crypt"
	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/queue"
	"github.com/streamapp/stream-platform/internal/repository"
	"github.com/streamapp/stream-platform/internal/service"
	"github.com/streamapp/stream-platform/internal/utils"
)

// MovieHandler serves the movie catalog, purchases and the admin CRUD.
type MovieHandler struct {
	Cfg     config.Config
	Movies  *repository.MovieRepo
	Videos  *repository.VideoRepo
	Serials *repository.SerialRepo
	Orders  *repository.OrderRepo
	Entitle *service.Entitlement
	Project *service.Projector
	Cipher  *crypt.FieldCipher
}

func NewMovieHandler(cfg config.Config, movies *repository.MovieRepo, videos *repository.VideoRepo,
	serials *repository.SerialRepo, orders *repository.OrderRepo, entitle *service.Entitlement,
	project *service.Projector, cipher *crypt.FieldCipher) *MovieHandler {
	return &MovieHandler{
		Cfg: cfg, Movies: movies, Videos: videos, Serials: serials,
		Orders: orders, Entitle: entitle, Project: project, Cipher: cipher,
	}
}

// ----- DTOs -----

type movieCreateReq struct {
	Title         string      `json:"title" validate:"required,max=256"`
	Slug          string      `json:"slug" validate:"required,max=256"`
	Poster        string      `json:"poster"`
	BigPoster     string      `json:"bigPoster"`
	VideoURL      string      `json:"videoUrl" validate:"required"`
	Year          int         `json:"year" validate:"gte=0"`
	Duration      int         `json:"duration" validate:"gte=0"`
	Genres        []string    `json:"genres"`
	Countries     []string    `json:"countries"`
	Crew          []crewEntry `json:"crew" validate:"dive"`
	NeedSubscribe bool        `json:"needSubscribe"`
	Price         float64     `json:"price" validate:"gte=0"`
	IsSendTelegram bool       `json:"isSendTelegram"`
}

type crewEntry struct {
	PersonID string `json:"personId" validate:"required"`
	RoleID   string `json:"roleId" validate:"required"`
}

// movieUpdateReq is a partial patch: absent fields keep their stored
// value. Empty poster/videoUrl strings also mean "keep".
type movieUpdateReq struct {
	Title         *string     `json:"title" validate:"omitempty,min=1,max=256"`
	Slug          *string     `json:"slug" validate:"omitempty,min=1,max=256"`
	Poster        string      `json:"poster"`
	BigPoster     string      `json:"bigPoster"`
	VideoURL      string      `json:"videoUrl"`
	Year          *int        `json:"year" validate:"omitempty,gte=0"`
	Duration      *int        `json:"duration" validate:"omitempty,gte=0"`
	Genres        []string    `json:"genres"`
	Countries     []string    `json:"countries"`
	Crew          []crewEntry `json:"crew" validate:"omitempty,dive"`
	NeedSubscribe *bool       `json:"needSubscribe"`
	Price         *float64    `json:"price" validate:"omitempty,gte=0"`
}

// applyMovieUpdate merges the submitted fields into the stored row.
func applyMovieUpdate(row *repository.MovieRow, req movieUpdateReq) {
	if req.Title != nil {
		row.Movie.Title = *req.Title
	}
	if req.Slug != nil {
		row.Movie.Slug = utils.Slugify(*req.Slug)
	}
	if req.NeedSubscribe != nil {
		row.Movie.NeedSubscribe = *req.NeedSubscribe
	}
	if req.Price != nil {
		row.Movie.Price = *req.Price
	}
	if req.Year != nil {
		row.Video.Year = *req.Year
	}
	if req.Duration != nil {
		row.Video.Duration = *req.Duration
	}
}

type idsReq struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type slugReq struct {
	Slug string `json:"slug" validate:"required"`
}

// toCrewInputs keeps nil as nil so an absent crew list leaves stored
// crew untouched on update.
func toCrewInputs(entries []crewEntry) []repository.CrewInput {
	if entries == nil {
		return nil
	}
	out := make([]repository.CrewInput, 0, len(entries))
	for _, e := range entries {
		out = append(out, repository.CrewInput{PersonID: e.PersonID, RoleID: e.RoleID})
	}
	return out
}

// ----- public -----

// List returns movies matching the searchTerm query, without tags and
// with redacted URLs.
func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Movies.List(ctx, c.QueryParam("searchTerm"))
	if err != nil {
		return fail(c, err)
	}
	return h.listViews(c, rows)
}

func (h *MovieHandler) MostPopular(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Movies.MostPopular(ctx)
	if err != nil {
		return fail(c, err)
	}
	return h.listViews(c, rows)
}

// ByGenres returns movies tagged with any of the posted genre ids.
func (h *MovieHandler) ByGenres(c echo.Context) error {
	var req idsReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Movies.ByGenres(ctx, req.IDs)
	if err != nil {
		return fail(c, err)
	}
	return h.listViews(c, rows)
}

// ByPersons returns movies featuring any of the posted person ids.
func (h *MovieHandler) ByPersons(c echo.Context) error {
	var req idsReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Movies.ByPersons(ctx, req.IDs)
	if err != nil {
		return fail(c, err)
	}
	return h.listViews(c, rows)
}

func (h *MovieHandler) listViews(c echo.Context, rows []repository.MovieRow) error {
	out := make([]service.MovieView, 0, len(rows))
	for _, row := range rows {
		view, err := h.Project.Movie(row, nil, nil, nil, false)
		if err != nil {
			return fail(c, err)
		}
		out = append(out, view)
	}
	return ok(c, out)
}

// BySlug returns the full movie view. The video URL is present only
// when the caller is entitled to watch.
func (h *MovieHandler) BySlug(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	row, err := h.Movies.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(c, err)
	}
	view, err := h.fullView(c, row)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

func (h *MovieHandler) fullView(c echo.Context, row repository.MovieRow) (service.MovieView, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	genres, err := h.Videos.GenresByVideo(ctx, row.Video.ID)
	if err != nil {
		return service.MovieView{}, err
	}
	countries, err := h.Videos.CountriesByVideo(ctx, row.Video.ID)
	if err != nil {
		return service.MovieView{}, err
	}
	crew, err := h.Videos.CrewByVideo(ctx, row.Video.ID)
	if err != nil {
		return service.MovieView{}, err
	}

	grant := isAdmin(c)
	if !grant {
		grant, err = h.Entitle.CanView(ctx, currentUserID(c), row.Video.ID, "", row.Movie.NeedSubscribe)
		if err != nil {
			return service.MovieView{}, err
		}
	}
	return h.Project.Movie(row, genres, countries, crew, grant)
}

// UpdateCountOpened bumps the view counter when a player opens the
// movie.
func (h *MovieHandler) UpdateCountOpened(c echo.Context) error {
	var req slugReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Movies.IncrementCountOpened(ctx, req.Slug); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "counted"})
}

// Buy purchases the video outright: a movie order for movie videos, a
// serial order when the video is an episode.
func (h *MovieHandler) Buy(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	videoID := c.Param("videoId")
	userID := currentUserID(c)

	video, err := h.Videos.GetByID(ctx, videoID)
	if err != nil {
		return fail(c, err)
	}

	order := model.Order{UserID: userID, OrderDate: time.Now().UTC()}
	if video.Type == model.TypeMovie {
		row, err := h.Movies.GetByVideoID(ctx, videoID)
		if err != nil {
			return fail(c, err)
		}
		order.MovieID = videoID
		order.Sum = row.Movie.Price
	} else {
		serial, err := h.Serials.SerialForVideo(ctx, videoID)
		if err != nil {
			return fail(c, err)
		}
		order.SerialID = serial.ID
		order.Sum = serial.Price
	}

	owned, err := h.Orders.DirectPurchase(ctx, userID, videoID, order.SerialID)
	if err != nil {
		return fail(c, err)
	}
	if owned {
		return fail(c, apperr.Conflict("already purchased"))
	}

	orderID, err := h.Orders.Create(ctx, order)
	if err != nil {
		return fail(c, err)
	}
	return created(c, echo.Map{"orderId": orderID, "sum": order.Sum})
}

// ----- admin -----

// GetByVideoID returns the movie with the URL decrypted, for the admin
// panel.
func (h *MovieHandler) GetByVideoID(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	row, err := h.Movies.GetByVideoID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	view, err := h.fullView(c, row)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

// Create inserts the movie with encrypted artwork and video URL, then
// optionally announces it.
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieCreateReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	videoID, err := h.createMovie(c, req)
	if err != nil {
		return fail(c, err)
	}

	if req.IsSendTelegram {
		h.announce(c, videoID, req.Title, req.Slug, req.Poster, req.Year)
	}

	row, err := h.Movies.GetByVideoID(ctx, videoID)
	if err != nil {
		return fail(c, err)
	}
	view, err := h.fullView(c, row)
	if err != nil {
		return fail(c, err)
	}
	return created(c, view)
}

func (h *MovieHandler) createMovie(c echo.Context, req movieCreateReq) (string, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	m := model.Movie{
		Title:         req.Title,
		Slug:          utils.Slugify(req.Slug),
		NeedSubscribe: req.NeedSubscribe,
		Price:         req.Price,
	}
	v := model.Video{Year: req.Year, Duration: req.Duration}

	var err error
	if v.VideoURL, v.VideoURLIV, err = h.Cipher.Encrypt(req.VideoURL); err != nil {
		return "", err
	}
	if req.Poster != "" {
		if m.Poster, m.PosterIV, err = h.Cipher.Encrypt(req.Poster); err != nil {
			return "", err
		}
	}
	if req.BigPoster != "" {
		if m.BigPoster, m.BigPosterIV, err = h.Cipher.Encrypt(req.BigPoster); err != nil {
			return "", err
		}
	}
	return h.Movies.Create(ctx, m, v, req.Genres, req.Countries, toCrewInputs(req.Crew))
}

// announce publishes the new-content event; failures are logged and the
// video stays unnotified so a later edit can retry.
func (h *MovieHandler) announce(c echo.Context, videoID, title, slug, poster string, year int) {
	if h.Cfg.AMQPURL == "" {
		return
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	genres, err := h.Videos.GenresByVideo(ctx, videoID)
	if err != nil {
		logrus.WithError(err).Warn("announce: load genres failed")
	}
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}

	event := queue.ContentPublishedEvent{
		VideoID:     videoID,
		Title:       title,
		Slug:        slug,
		PosterURL:   poster,
		Year:        year,
		Genres:      names,
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue.PublishContentPublished(ctx, h.Cfg.AMQPURL, event); err != nil {
		return
	}
	if err := h.Videos.MarkNotified(ctx, videoID); err != nil {
		logrus.WithError(err).Warn("announce: mark notified failed")
	}
}

// Update merges the patch into the movie. Absent fields and empty URL
// strings keep the stored values.
func (h *MovieHandler) Update(c echo.Context) error {
	var req movieUpdateReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	row, err := h.Movies.GetByVideoID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	applyMovieUpdate(&row, req)

	if req.VideoURL != "" {
		if row.Video.VideoURL, row.Video.VideoURLIV, err = h.Cipher.Encrypt(req.VideoURL); err != nil {
			return fail(c, err)
		}
	}
	if req.Poster != "" {
		if row.Movie.Poster, row.Movie.PosterIV, err = h.Cipher.Encrypt(req.Poster); err != nil {
			return fail(c, err)
		}
	}
	if req.BigPoster != "" {
		if row.Movie.BigPoster, row.Movie.BigPosterIV, err = h.Cipher.Encrypt(req.BigPoster); err != nil {
			return fail(c, err)
		}
	}

	if err := h.Movies.Update(ctx, row, req.Genres, req.Countries, toCrewInputs(req.Crew)); err != nil {
		return fail(c, err)
	}
	view, err := h.fullView(c, row)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

func (h *MovieHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Movies.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "deleted"})
}

// PackageMovies imports a batch of movies from uploaded JSON files.
// The import is fail-fast: the first bad entry aborts with its index
// and already-created movies stay.
func (h *MovieHandler) PackageMovies(c echo.Context) error {
	reqs, err := packageEntries[movieCreateReq](c)
	if err != nil {
		return fail(c, err)
	}

	ids := make([]string, 0, len(reqs))
	for i, req := range reqs {
		if err := validate.Struct(req); err != nil {
			return fail(c, apperr.Validation("package", "entry "+strconv.Itoa(i)+" is invalid"))
		}
		videoID, err := h.createMovie(c, req)
		if err != nil {
			return fail(c, err)
		}
		if req.IsSendTelegram {
			h.announce(c, videoID, req.Title, req.Slug, req.Poster, req.Year)
		}
		ids = append(ids, videoID)
	}
	return created(c, echo.Map{"created": ids})
}
