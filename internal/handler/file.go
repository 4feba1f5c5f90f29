package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/streamapp/stream-platform/internal/apperr"
	"github.com/streamapp/stream-platform/internal/storage"
)

// FileHandler accepts media uploads for the admin panel.
type FileHandler struct {
	Store storage.FileStore
}

func NewFileHandler(store storage.FileStore) *FileHandler {
	return &FileHandler{Store: store}
}

// Upload stores each file of the multipart form under the folder named
// by the query parameter and returns the public paths.
func (h *FileHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, apperr.New(apperr.KindValidation, "multipart form required"))
	}

	var paths []string
	for _, files := range form.File {
		for _, fh := range files {
			src, err := fh.Open()
			if err != nil {
				return fail(c, err)
			}
			path, err := h.Store.Save(c.QueryParam("folder"), fh.Filename, src)
			_ = src.Close()
			if err != nil {
				return fail(c, err)
			}
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return fail(c, apperr.New(apperr.KindValidation, "no files submitted"))
	}
	return created(c, echo.Map{"paths": paths})
}
