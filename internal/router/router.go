// Package router maps the HTTP surface onto the handlers. Public
// catalog routes run OptionalAuth so entitled users get unlocked video
// URLs; admin routes stack JWTAuth and RequireRole.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/streamapp/stream-platform/internal/config"
	"github.com/streamapp/stream-platform/internal/handler"
	"github.com/streamapp/stream-platform/internal/middleware"
)

// Handlers bundles every handler the API mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Genres     *handler.GenreHandler
	Countries  *handler.CountryHandler
	Persons    *handler.PersonHandler
	Movies     *handler.MovieHandler
	Serials    *handler.SerialHandler
	Subscribes *handler.SubscribeHandler
	Ratings    *handler.RatingHandler
	Comments   *handler.CommentHandler
	Files      *handler.FileHandler
}

// Register mounts all routes. rdb may be nil, which disables the Redis
// response cache and rate limiter.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)
	e.Static("/uploads", cfg.UploadDir)

	api := e.Group("/api")
	if rdb != nil {
		api.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}

	optional := middleware.OptionalAuth(cfg.JWTSecret)
	auth := middleware.JWTAuth(cfg.JWTSecret)
	admin := []echo.MiddlewareFunc{auth, middleware.RequireRole(handler.RoleAdmin)}

	// Response cache for the public catalog groups. Keys include the
	// caller identity, so entitlement-divergent payloads never mix.
	cached := func(g *echo.Group) {
		if rdb != nil {
			g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
		}
	}

	// auth
	authG := api.Group("/auth")
	authG.POST("/register", h.Auth.Register)
	authG.POST("/login", h.Auth.Login)
	authG.POST("/login/access-token", h.Auth.Refresh)
	authG.POST("/logout", h.Auth.Logout, auth)

	// users
	users := api.Group("/users")
	users.GET("/profile", h.Users.Profile, auth)
	users.PUT("/profile", h.Users.UpdateProfile, auth)
	users.GET("/profile/favorites", h.Users.ListFavorites, auth)
	users.PUT("/profile/favorites", h.Users.ToggleFavorite, auth)
	users.GET("/profile/orders", h.Users.ListOrders, auth)
	users.POST("", h.Users.Create, admin...)
	users.GET("", h.Users.List, admin...)
	users.GET("/count", h.Users.Count, admin...)
	users.GET("/:id", h.Users.GetByID, admin...)
	users.PUT("/:id", h.Users.Update, admin...)
	users.DELETE("/:id", h.Users.Delete, admin...)

	// genres
	genres := api.Group("/genres")
	cached(genres)
	genres.GET("", h.Genres.List)
	genres.GET("/collections", h.Genres.Collections)
	genres.GET("/by-slug/:slug", h.Genres.BySlug)
	genres.GET("/:id", h.Genres.GetByID, admin...)
	genres.POST("", h.Genres.Create, admin...)
	genres.PUT("/:id", h.Genres.Update, admin...)
	genres.DELETE("/:id", h.Genres.Delete, admin...)

	// countries
	countries := api.Group("/countries")
	countries.GET("", h.Countries.List)
	countries.GET("/:id", h.Countries.GetByID, admin...)
	countries.POST("", h.Countries.Create, admin...)
	countries.PUT("/:id", h.Countries.Update, admin...)
	countries.DELETE("/:id", h.Countries.Delete, admin...)

	// persons
	persons := api.Group("/persons")
	cached(persons)
	persons.GET("", h.Persons.List)
	persons.GET("/by-slug/:slug", h.Persons.BySlug)
	persons.GET("/:id", h.Persons.GetByID, admin...)
	persons.POST("", h.Persons.Create, admin...)
	persons.PUT("/:id", h.Persons.Update, admin...)
	persons.DELETE("/:id", h.Persons.Delete, admin...)

	// movies: OptionalAuth runs at group level so the cache below keys
	// on the real caller, not on "guest".
	movies := api.Group("/movies", optional)
	cached(movies)
	movies.GET("", h.Movies.List)
	movies.GET("/most-popular", h.Movies.MostPopular)
	movies.GET("/by-slug/:slug", h.Movies.BySlug)
	movies.POST("/by-genres", h.Movies.ByGenres)
	movies.POST("/by-persons", h.Movies.ByPersons)
	movies.PUT("/update-count-opened", h.Movies.UpdateCountOpened)
	movies.POST("/buy/:videoId", h.Movies.Buy, auth)
	movies.GET("/:id", h.Movies.GetByVideoID, admin...)
	movies.POST("", h.Movies.Create, admin...)
	movies.POST("/package-movies", h.Movies.PackageMovies, admin...)
	movies.PUT("/:id", h.Movies.Update, admin...)
	movies.DELETE("/:id", h.Movies.Delete, admin...)

	// serials
	serials := api.Group("/serials", optional)
	cached(serials)
	serials.GET("", h.Serials.List)
	serials.GET("/by-slug/:slug", h.Serials.BySlug)
	serials.GET("/by-slug/:slug/:number", h.Serials.SeasonByNumber)
	serials.GET("/by-slug/:slug/:number/:episodeId", h.Serials.EpisodeByID)
	serials.PUT("/update-count-opened", h.Serials.UpdateCountOpened)
	serials.GET("/:id", h.Serials.GetByID, admin...)
	serials.POST("", h.Serials.Create, admin...)
	serials.POST("/package-serials", h.Serials.PackageSerials, admin...)
	serials.PUT("/:id", h.Serials.Update, admin...)
	serials.DELETE("/:id", h.Serials.Delete, admin...)

	// seasons and episodes
	seasons := api.Group("/seasons")
	seasons.POST("", h.Serials.CreateSeason, admin...)
	seasons.PUT("/:id", h.Serials.UpdateSeason, admin...)
	seasons.DELETE("/:id", h.Serials.DeleteSeason, admin...)

	episodes := api.Group("/episodes")
	episodes.POST("", h.Serials.CreateEpisode, admin...)
	episodes.PUT("/:id", h.Serials.UpdateEpisode, admin...)
	episodes.DELETE("/:id", h.Serials.DeleteEpisode, admin...)

	// subscribes
	subscribes := api.Group("/subscribes")
	subscribes.GET("", h.Subscribes.List)
	subscribes.GET("/:id", h.Subscribes.GetByID)
	subscribes.POST("/buy/:id", h.Subscribes.Buy, auth)
	subscribes.POST("", h.Subscribes.Create, admin...)
	subscribes.PUT("/:id", h.Subscribes.Update, admin...)
	subscribes.DELETE("/:id", h.Subscribes.Delete, admin...)

	// ratings
	ratings := api.Group("/ratings", auth)
	ratings.POST("", h.Ratings.Set)
	ratings.GET("/:videoId", h.Ratings.Get)

	// comments
	comments := api.Group("/comments")
	comments.GET("/:videoId", h.Comments.ByVideo)
	comments.POST("", h.Comments.Set, auth)
	comments.DELETE("/:videoId", h.Comments.Delete, auth)

	// files
	api.POST("/files", h.Files.Upload, admin...)
}
