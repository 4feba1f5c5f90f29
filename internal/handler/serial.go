package handler

import (
	"fmt"
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

// SerialHandler serves the serial catalog with its nested seasons and
// episodes, plus the admin CRUD for all three levels.
type SerialHandler struct {
	Cfg     config.Config
	Serials *repository.SerialRepo
	Videos  *repository.VideoRepo
	Entitle *service.Entitlement
	Project *service.Projector
	Cipher  *crypt.FieldCipher
}

func NewSerialHandler(cfg config.Config, serials *repository.SerialRepo, videos *repository.VideoRepo,
	entitle *service.Entitlement, project *service.Projector, cipher *crypt.FieldCipher) *SerialHandler {
	return &SerialHandler{Cfg: cfg, Serials: serials, Videos: videos, Entitle: entitle, Project: project, Cipher: cipher}
}

// ----- DTOs -----

// episodeReq doubles for create and update; the cipher rejects an empty
// URL on create, while update keeps the stored one.
type episodeReq struct {
	EpisodeNumber  int         `json:"episodeNumber" validate:"required,gte=1"`
	VideoURL       string      `json:"videoUrl"`
	Year           int         `json:"year" validate:"gte=0"`
	Duration       int         `json:"duration" validate:"gte=0"`
	Genres         []string    `json:"genres"`
	Countries      []string    `json:"countries"`
	Crew           []crewEntry `json:"crew" validate:"dive"`
	IsSendTelegram bool        `json:"isSendTelegram"`
}

type seasonReq struct {
	Number   int          `json:"number" validate:"required,gte=1"`
	Episodes []episodeReq `json:"episodes" validate:"dive"`
}

type serialCreateReq struct {
	Title         string      `json:"title" validate:"required,max=256"`
	Slug          string      `json:"slug" validate:"required,max=256"`
	Poster        string      `json:"poster"`
	BigPoster     string      `json:"bigPoster"`
	NeedSubscribe bool        `json:"needSubscribe"`
	Price         float64     `json:"price" validate:"gte=0"`
	Seasons       []seasonReq `json:"seasons" validate:"dive"`
}

// serialUpdateReq is a partial patch: absent fields keep their stored
// value, empty poster strings included.
type serialUpdateReq struct {
	Title         *string  `json:"title" validate:"omitempty,min=1,max=256"`
	Slug          *string  `json:"slug" validate:"omitempty,min=1,max=256"`
	Poster        string   `json:"poster"`
	BigPoster     string   `json:"bigPoster"`
	NeedSubscribe *bool    `json:"needSubscribe"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
}

// applySerialUpdate merges the submitted fields into the stored serial.
func applySerialUpdate(s *model.Serial, req serialUpdateReq) {
	if req.Title != nil {
		s.Title = *req.Title
	}
	if req.Slug != nil {
		s.Slug = utils.Slugify(*req.Slug)
	}
	if req.NeedSubscribe != nil {
		s.NeedSubscribe = *req.NeedSubscribe
	}
	if req.Price != nil {
		s.Price = *req.Price
	}
}

type seasonCreateReq struct {
	SerialID string       `json:"serialId" validate:"required"`
	Number   int          `json:"number" validate:"required,gte=1"`
	Episodes []episodeReq `json:"episodes" validate:"dive"`
}

type seasonUpdateReq struct {
	Number int `json:"number" validate:"required,gte=1"`
}

type episodeCreateReq struct {
	SeasonID string `json:"seasonId" validate:"required"`
	episodeReq
}

func (h *SerialHandler) episodeInput(req episodeReq) (repository.EpisodeInput, error) {
	v := model.Video{
		Year:          req.Year,
		Duration:      req.Duration,
		EpisodeNumber: req.EpisodeNumber,
	}
	var err error
	if v.VideoURL, v.VideoURLIV, err = h.Cipher.Encrypt(req.VideoURL); err != nil {
		return repository.EpisodeInput{}, err
	}
	return repository.EpisodeInput{
		Video:      v,
		GenreIDs:   req.Genres,
		CountryIDs: req.Countries,
		Crew:       toCrewInputs(req.Crew),
	}, nil
}

// ----- public -----

// List returns serials matching the searchTerm query.
func (h *SerialHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	serials, err := h.Serials.List(ctx, c.QueryParam("searchTerm"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]service.SerialView, 0, len(serials))
	for _, s := range serials {
		view, err := h.Project.Serial(s, nil)
		if err != nil {
			return fail(c, err)
		}
		out = append(out, view)
	}
	return ok(c, out)
}

// BySlug returns the serial with every season and episode. Episode URLs
// decrypt per-episode entitlement.
func (h *SerialHandler) BySlug(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Serials.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(c, err)
	}
	seasons, err := h.seasonViews(c, s)
	if err != nil {
		return fail(c, err)
	}
	view, err := h.Project.Serial(s, seasons)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

func (h *SerialHandler) seasonViews(c echo.Context, s model.Serial) ([]service.SeasonView, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	seasons, err := h.Serials.SeasonsBySerial(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	out := make([]service.SeasonView, 0, len(seasons))
	for _, season := range seasons {
		view, err := h.seasonView(c, s, season)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (h *SerialHandler) seasonView(c echo.Context, s model.Serial, season model.Season) (service.SeasonView, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	episodes, err := h.Serials.EpisodesBySeason(ctx, season.ID)
	if err != nil {
		return service.SeasonView{}, err
	}
	views := make([]service.EpisodeView, 0, len(episodes))
	for _, ep := range episodes {
		grant := isAdmin(c)
		if !grant {
			grant, err = h.Entitle.CanView(ctx, currentUserID(c), ep.ID, s.ID, s.NeedSubscribe)
			if err != nil {
				return service.SeasonView{}, err
			}
		}
		view, err := h.Project.Episode(ep, nil, nil, nil, grant)
		if err != nil {
			return service.SeasonView{}, err
		}
		views = append(views, view)
	}
	return h.Project.Season(season, views), nil
}

// SeasonByNumber returns one season of a serial addressed by slug and
// season number.
func (h *SerialHandler) SeasonByNumber(c echo.Context) error {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return fail(c, apperr.Validation("number", "season number must be an integer"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Serials.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(c, err)
	}
	season, err := h.Serials.SeasonBySerialSlug(ctx, c.Param("slug"), number)
	if err != nil {
		return fail(c, err)
	}
	view, err := h.seasonView(c, s, season)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

// EpisodeByID returns one episode of a season addressed by serial slug,
// season number and episode video id, with full tags.
func (h *SerialHandler) EpisodeByID(c echo.Context) error {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return fail(c, apperr.Validation("number", "season number must be an integer"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Serials.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(c, err)
	}
	season, err := h.Serials.SeasonBySerialSlug(ctx, c.Param("slug"), number)
	if err != nil {
		return fail(c, err)
	}
	episodes, err := h.Serials.EpisodesBySeason(ctx, season.ID)
	if err != nil {
		return fail(c, err)
	}
	for _, ep := range episodes {
		if ep.ID != c.Param("episodeId") {
			continue
		}
		genres, err := h.Videos.GenresByVideo(ctx, ep.ID)
		if err != nil {
			return fail(c, err)
		}
		countries, err := h.Videos.CountriesByVideo(ctx, ep.ID)
		if err != nil {
			return fail(c, err)
		}
		crew, err := h.Videos.CrewByVideo(ctx, ep.ID)
		if err != nil {
			return fail(c, err)
		}
		grant := isAdmin(c)
		if !grant {
			grant, err = h.Entitle.CanView(ctx, currentUserID(c), ep.ID, s.ID, s.NeedSubscribe)
			if err != nil {
				return fail(c, err)
			}
		}
		view, err := h.Project.Episode(ep, genres, countries, crew, grant)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, view)
	}
	return fail(c, apperr.NotFound("episode not found in season"))
}

// UpdateCountOpened bumps the serial's view counter.
func (h *SerialHandler) UpdateCountOpened(c echo.Context) error {
	var req slugReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Serials.IncrementCountOpened(ctx, req.Slug); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "counted"})
}

// ----- admin: serials -----

func (h *SerialHandler) GetByID(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Serials.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	seasons, err := h.seasonViews(c, s)
	if err != nil {
		return fail(c, err)
	}
	view, err := h.Project.Serial(s, seasons)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

// Create inserts a serial and any nested seasons and episodes.
func (h *SerialHandler) Create(c echo.Context) error {
	var req serialCreateReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	id, err := h.createSerial(c, req)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Serials.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	seasons, err := h.seasonViews(c, s)
	if err != nil {
		return fail(c, err)
	}
	view, err := h.Project.Serial(s, seasons)
	if err != nil {
		return fail(c, err)
	}
	return created(c, view)
}

func (h *SerialHandler) createSerial(c echo.Context, req serialCreateReq) (string, error) {
	s := model.Serial{
		Title:         req.Title,
		Slug:          utils.Slugify(req.Slug),
		NeedSubscribe: req.NeedSubscribe,
		Price:         req.Price,
	}
	var err error
	if req.Poster != "" {
		if s.Poster, s.PosterIV, err = h.Cipher.Encrypt(req.Poster); err != nil {
			return "", err
		}
	}
	if req.BigPoster != "" {
		if s.BigPoster, s.BigPosterIV, err = h.Cipher.Encrypt(req.BigPoster); err != nil {
			return "", err
		}
	}

	seasons := make([]repository.SeasonInput, 0, len(req.Seasons))
	for _, sr := range req.Seasons {
		episodes := make([]repository.EpisodeInput, 0, len(sr.Episodes))
		for _, er := range sr.Episodes {
			input, err := h.episodeInput(er)
			if err != nil {
				return "", err
			}
			episodes = append(episodes, input)
		}
		seasons = append(seasons, repository.SeasonInput{Number: sr.Number, Episodes: episodes})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Serials.Create(ctx, s, seasons)
	if err != nil {
		return "", err
	}
	h.announceEpisodes(c, req.Title, req.Poster, req.Seasons)
	return id, nil
}

// announceEpisodes publishes one event per episode flagged for
// notification; failures are logged and skipped.
func (h *SerialHandler) announceEpisodes(c echo.Context, title, poster string, seasons []seasonReq) {
	if h.Cfg.AMQPURL == "" {
		return
	}
	for _, sr := range seasons {
		for _, er := range sr.Episodes {
			if !er.IsSendTelegram {
				continue
			}
			h.announceEpisode(c, fmt.Sprintf("%s S%02dE%02d", title, sr.Number, er.EpisodeNumber), poster, er.Year)
		}
	}
}

func (h *SerialHandler) announceEpisode(c echo.Context, title, poster string, year int) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	event := queue.ContentPublishedEvent{
		Title:       title,
		PosterURL:   poster,
		Year:        year,
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue.PublishContentPublished(ctx, h.Cfg.AMQPURL, event); err != nil {
		logrus.WithError(err).Warn("announce episode failed")
	}
}

func (h *SerialHandler) Update(c echo.Context) error {
	var req serialUpdateReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Serials.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	applySerialUpdate(&s, req)
	if req.Poster != "" {
		if s.Poster, s.PosterIV, err = h.Cipher.Encrypt(req.Poster); err != nil {
			return fail(c, err)
		}
	}
	if req.BigPoster != "" {
		if s.BigPoster, s.BigPosterIV, err = h.Cipher.Encrypt(req.BigPoster); err != nil {
			return fail(c, err)
		}
	}
	if err := h.Serials.Update(ctx, s); err != nil {
		return fail(c, err)
	}
	view, err := h.Project.Serial(s, nil)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

func (h *SerialHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Serials.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "deleted"})
}

// PackageSerials imports a batch of serials from uploaded JSON files,
// fail-fast like the movie package import.
func (h *SerialHandler) PackageSerials(c echo.Context) error {
	reqs, err := packageEntries[serialCreateReq](c)
	if err != nil {
		return fail(c, err)
	}

	ids := make([]string, 0, len(reqs))
	for i, req := range reqs {
		if err := validate.Struct(req); err != nil {
			return fail(c, apperr.Validation("package", "entry "+strconv.Itoa(i)+" is invalid"))
		}
		id, err := h.createSerial(c, req)
		if err != nil {
			return fail(c, err)
		}
		ids = append(ids, id)
	}
	return created(c, echo.Map{"created": ids})
}

// ----- admin: seasons -----

func (h *SerialHandler) CreateSeason(c echo.Context) error {
	var req seasonCreateReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	episodes := make([]repository.EpisodeInput, 0, len(req.Episodes))
	for _, er := range req.Episodes {
		input, err := h.episodeInput(er)
		if err != nil {
			return fail(c, err)
		}
		episodes = append(episodes, input)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Serials.CreateSeason(ctx, req.SerialID, req.Number, episodes)
	if err != nil {
		return fail(c, err)
	}
	return created(c, echo.Map{"seasonId": id})
}

func (h *SerialHandler) UpdateSeason(c echo.Context) error {
	var req seasonUpdateReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	season, err := h.Serials.GetSeason(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	season.Number = req.Number
	if err := h.Serials.UpdateSeason(ctx, season); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"seasonId": season.ID, "number": season.Number})
}

func (h *SerialHandler) DeleteSeason(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Serials.DeleteSeason(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "deleted"})
}

// ----- admin: episodes -----

func (h *SerialHandler) CreateEpisode(c echo.Context) error {
	var req episodeCreateReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	input, err := h.episodeInput(req.episodeReq)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Serials.CreateEpisode(ctx, req.SeasonID, input)
	if err != nil {
		return fail(c, err)
	}
	if req.IsSendTelegram && h.Cfg.AMQPURL != "" {
		season, err := h.Serials.GetSeason(ctx, req.SeasonID)
		if err == nil {
			if s, err := h.Serials.GetByID(ctx, season.SerialID); err == nil {
				h.announceEpisode(c, fmt.Sprintf("%s S%02dE%02d", s.Title, season.Number, req.EpisodeNumber), "", req.Year)
			}
		}
	}
	return created(c, echo.Map{"videoId": id})
}

func (h *SerialHandler) UpdateEpisode(c echo.Context) error {
	var req episodeReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Videos.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	v.Year = req.Year
	v.Duration = req.Duration
	v.EpisodeNumber = req.EpisodeNumber
	if req.VideoURL != "" {
		if v.VideoURL, v.VideoURLIV, err = h.Cipher.Encrypt(req.VideoURL); err != nil {
			return fail(c, err)
		}
	}
	if err := h.Serials.UpdateEpisode(ctx, v, req.Genres, req.Countries, toCrewInputs(req.Crew)); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"videoId": v.ID})
}

func (h *SerialHandler) DeleteEpisode(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Serials.DeleteEpisode(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "deleted"})
}
