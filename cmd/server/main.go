package main

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/streamapp/stream-platform/internal/config"
	"github.com/streamapp/stream-platform/internal/crypt"
	"github.com/streamapp/stream-platform/internal/database"
	"github.com/streamapp/stream-platform/internal/handler"
	"github.com/streamapp/stream-platform/internal/queue"
	"github.com/streamapp/stream-platform/internal/repository"
	"github.com/streamapp/stream-platform/internal/router"
	"github.com/streamapp/stream-platform/internal/service"
	"github.com/streamapp/stream-platform/internal/storage"
	"github.com/streamapp/stream-platform/internal/telegram"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Env == "dev" {
		logrus.SetFormatter(&logrus.TextFormatter{})
		logrus.SetLevel(logrus.DebugLevel)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database connect failed")
	}
	defer db.Close()

	cipher, err := crypt.New(cfg.CryptKey)
	if err != nil {
		logrus.WithError(err).Fatal("field cipher init failed")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logrus.Warn("redis unavailable, response cache and rate limiting disabled")
	}

	// repositories
	users := repository.NewUserRepo(db)
	genres := repository.NewGenreRepo(db)
	countries := repository.NewCountryRepo(db)
	persons := repository.NewPersonRepo(db)
	videos := repository.NewVideoRepo(db)
	movies := repository.NewMovieRepo(db, videos)
	serials := repository.NewSerialRepo(db, videos)
	subscribes := repository.NewSubscribeRepo(db)
	orders := repository.NewOrderRepo(db)
	ratings := repository.NewRatingRepo(db)
	comments := repository.NewCommentRepo(db)
	favorites := repository.NewFavoriteRepo(db)

	// services
	entitle := service.NewEntitlement(orders)
	project := service.NewProjector(cipher)
	rater := service.NewRater(ratings, videos, movies, serials)

	// background announcement consumer
	bot := telegram.New(cfg.TelegramToken, cfg.TelegramChatID)
	if cfg.AMQPURL != "" && bot.Enabled() {
		go queue.StartContentConsumer(cfg.AMQPURL, bot)
	}

	h := router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, users),
		Users:      handler.NewUserHandler(cfg, users, favorites, orders, movies, project),
		Genres:     handler.NewGenreHandler(genres, cipher),
		Countries:  handler.NewCountryHandler(countries),
		Persons:    handler.NewPersonHandler(persons, cipher),
		Movies:     handler.NewMovieHandler(cfg, movies, videos, serials, orders, entitle, project, cipher),
		Serials:    handler.NewSerialHandler(cfg, serials, videos, entitle, project, cipher),
		Subscribes: handler.NewSubscribeHandler(subscribes, orders),
		Ratings:    handler.NewRatingHandler(rater),
		Comments:   handler.NewCommentHandler(comments),
		Files:      handler.NewFileHandler(storage.NewLocal(cfg.UploadDir)),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	router.Register(e, h, cfg, rdb)

	addr := ":" + cfg.Port
	logrus.WithField("addr", addr).WithField("env", cfg.Env).Info("listening")
	if err := e.Start(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
