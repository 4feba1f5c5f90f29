package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/streamapp/stream-platform/internal/apperr"
	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/repository"
)

// SubscribeHandler serves subscription plans and their purchase.
type SubscribeHandler struct {
	Subscribes *repository.SubscribeRepo
	Orders     *repository.OrderRepo
}

func NewSubscribeHandler(subscribes *repository.SubscribeRepo, orders *repository.OrderRepo) *SubscribeHandler {
	return &SubscribeHandler{Subscribes: subscribes, Orders: orders}
}

type subscribeReq struct {
	Name        string   `json:"name" validate:"required,max=128"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"gte=0"`
	Duration    int      `json:"duration" validate:"required,gte=1"`
	Genres      []string `json:"genres"`
	Countries   []string `json:"countries"`
	Persons     []string `json:"persons"`
}

type subscribeView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Duration    int      `json:"duration"`
	Genres      []string `json:"genres,omitempty"`
	Countries   []string `json:"countries,omitempty"`
	Persons     []string `json:"persons,omitempty"`
}

func toSubscribeView(s model.Subscribe, tags repository.SubscribeTags) subscribeView {
	return subscribeView{
		ID: s.ID, Name: s.Name, Description: s.Description,
		Price: s.Price, Duration: s.Duration,
		Genres: tags.GenreIDs, Countries: tags.CountryIDs, Persons: tags.PersonIDs,
	}
}

// List returns every plan with its coverage sets.
func (h *SubscribeHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	subscribes, err := h.Subscribes.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	out := make([]subscribeView, 0, len(subscribes))
	for _, s := range subscribes {
		tags, err := h.Subscribes.Tags(ctx, s.ID)
		if err != nil {
			return fail(c, err)
		}
		out = append(out, toSubscribeView(s, tags))
	}
	return ok(c, out)
}

func (h *SubscribeHandler) GetByID(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Subscribes.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	tags, err := h.Subscribes.Tags(ctx, s.ID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, toSubscribeView(s, tags))
}

// Buy purchases the plan. A user holding the same plan still inside its
// paid window cannot buy it again.
func (h *SubscribeHandler) Buy(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Subscribes.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}

	userID := currentUserID(c)
	orders, err := h.Orders.SubscriptionOrders(ctx, userID)
	if err != nil {
		return fail(c, err)
	}
	now := time.Now()
	for _, o := range orders {
		if o.SubscribeID == s.ID && now.Before(o.OrderDate.AddDate(0, o.DurationMonths, 0)) {
			return fail(c, apperr.Conflict("subscription is still active"))
		}
	}

	orderID, err := h.Orders.Create(ctx, model.Order{
		UserID:      userID,
		Sum:         s.Price,
		OrderDate:   now.UTC(),
		SubscribeID: s.ID,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, echo.Map{"orderId": orderID, "sum": s.Price})
}

// ----- admin -----

func (h *SubscribeHandler) Create(c echo.Context) error {
	var req subscribeReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tags := repository.SubscribeTags{GenreIDs: req.Genres, CountryIDs: req.Countries, PersonIDs: req.Persons}
	id, err := h.Subscribes.Create(ctx, model.Subscribe{
		Name: req.Name, Description: req.Description,
		Price: req.Price, Duration: req.Duration,
	}, tags)
	if err != nil {
		return fail(c, err)
	}
	return created(c, echo.Map{"id": id})
}

func (h *SubscribeHandler) Update(c echo.Context) error {
	var req subscribeReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Subscribes.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	s.Name = req.Name
	s.Description = req.Description
	s.Price = req.Price
	s.Duration = req.Duration
	tags := repository.SubscribeTags{GenreIDs: req.Genres, CountryIDs: req.Countries, PersonIDs: req.Persons}
	if err := h.Subscribes.Update(ctx, s, tags); err != nil {
		return fail(c, err)
	}
	return ok(c, toSubscribeView(s, tags))
}

func (h *SubscribeHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Subscribes.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "deleted"})
}
