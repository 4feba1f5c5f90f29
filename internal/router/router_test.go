package router

import (
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/streamapp/stream-platform/internal/config"
	"github.com/streamapp/stream-platform/internal/handler"
)

func TestRegisterMountsRoutes(t *testing.T) {
	e := echo.New()
	Register(e, Handlers{
		Auth:       &handler.AuthHandler{},
		Users:      &handler.UserHandler{},
		Genres:     &handler.GenreHandler{},
		Countries:  &handler.CountryHandler{},
		Persons:    &handler.PersonHandler{},
		Movies:     &handler.MovieHandler{},
		Serials:    &handler.SerialHandler{},
		Subscribes: &handler.SubscribeHandler{},
		Ratings:    &handler.RatingHandler{},
		Comments:   &handler.CommentHandler{},
		Files:      &handler.FileHandler{},
	}, config.Config{UploadDir: t.TempDir()}, nil)

	mounted := make(map[string]bool)
	for _, r := range e.Routes() {
		mounted[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/login/access-token",
		"GET /api/users/profile/favorites",
		"GET /api/users/profile/orders",
		"POST /api/users",
		"GET /api/users/count",
		"GET /api/genres/collections",
		"GET /api/movies/by-slug/:slug",
		"POST /api/movies/buy/:videoId",
		"POST /api/movies/package-movies",
		"GET /api/serials/by-slug/:slug/:number",
		"GET /api/serials/by-slug/:slug/:number/:episodeId",
		"POST /api/serials/package-serials",
		"POST /api/subscribes/buy/:id",
		"POST /api/ratings",
		"GET /api/comments/:videoId",
		"POST /api/files",
		"GET /healthz",
	} {
		require.True(t, mounted[want], "missing route %s", want)
	}
}
