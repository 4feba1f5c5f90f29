package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/streamapp/stream-platform/internal/service"
)

// RatingHandler records user ratings through the aggregator.
type RatingHandler struct {
	Rater *service.Rater
}

func NewRatingHandler(rater *service.Rater) *RatingHandler {
	return &RatingHandler{Rater: rater}
}

type setRatingReq struct {
	VideoID string  `json:"videoId" validate:"required"`
	Value   float64 `json:"value" validate:"gte=0,lte=10"`
}

// Set stores the caller's rating and returns the recomputed aggregate.
func (h *RatingHandler) Set(c echo.Context) error {
	var req setRatingReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	avg, err := h.Rater.Rate(ctx, currentUserID(c), req.VideoID, req.Value)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"videoId": req.VideoID, "rating": avg})
}

// Get returns the caller's stored rating for a video, 0 when unrated.
func (h *RatingHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	value, err := h.Rater.ValueFor(ctx, currentUserID(c), c.Param("videoId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"videoId": c.Param("videoId"), "value": value})
}
