package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/streamapp/stream-platform/internal/apperr"
	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/repository"
)

// CommentHandler serves the one-comment-per-user-per-video endpoints.
type CommentHandler struct {
	Comments *repository.CommentRepo
}

func NewCommentHandler(comments *repository.CommentRepo) *CommentHandler {
	return &CommentHandler{Comments: comments}
}

type commentReq struct {
	VideoID string `json:"videoId" validate:"required"`
	Value   string `json:"value" validate:"required,max=2000"`
}

type commentView struct {
	UserID  string `json:"userId"`
	Login   string `json:"login"`
	VideoID string `json:"videoId"`
	Value   string `json:"value"`
}

// Set writes the caller's comment, replacing an earlier one on the same
// video.
func (h *CommentHandler) Set(c echo.Context) error {
	var req commentReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	body := strings.TrimSpace(req.Value)
	if body == "" {
		return fail(c, apperr.Validation("value", "comment must not be blank"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	comment := model.Comment{UserID: currentUserID(c), VideoID: req.VideoID, Value: body}
	if err := h.Comments.Upsert(ctx, comment); err != nil {
		return fail(c, err)
	}
	return ok(c, commentView{UserID: comment.UserID, VideoID: comment.VideoID, Value: comment.Value})
}

// ByVideo lists a video's comments.
func (h *CommentHandler) ByVideo(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Comments.ByVideo(ctx, c.Param("videoId"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]commentView, 0, len(rows))
	for _, row := range rows {
		out = append(out, commentView{
			UserID:  row.Comment.UserID,
			Login:   row.Login,
			VideoID: row.Comment.VideoID,
			Value:   row.Comment.Value,
		})
	}
	return ok(c, out)
}

// Delete removes the caller's own comment.
func (h *CommentHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Comments.Delete(ctx, currentUserID(c), c.Param("videoId")); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"status": "deleted"})
}
