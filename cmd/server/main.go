package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/office-charging/internal/auth"
	"github.com/iliyamo/office-charging/internal/config"
	"github.com/iliyamo/office-charging/internal/database"
	"github.com/iliyamo/office-charging/internal/handler"
	"github.com/iliyamo/office-charging/internal/httperr"
	"github.com/iliyamo/office-charging/internal/queue"
	"github.com/iliyamo/office-charging/internal/repository"
	"github.com/iliyamo/office-charging/internal/router"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	offices := repository.NewOfficeRepo(db)
	stations := repository.NewStationRepo(db)
	sessions := repository.NewSessionRepo(db)
	leaderboard := repository.NewLeaderboardRepo(db)

	authSvc := auth.NewService(cfg, users, tokens)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Offices:     handler.NewOfficeHandler(offices),
		Users:       handler.NewUserHandler(users),
		Stations:    handler.NewStationHandler(stations),
		Sessions:    handler.NewSessionHandler(sessions, stations, leaderboard, logger),
		Leaderboard: handler.NewLeaderboardHandler(leaderboard),
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.NewHTTPErrorHandler(logger)
	e.Use(echomw.Recover())

	router.Register(e, h, authSvc, rdb, config.LoadCacheConfig(), config.LoadRateLimitConfig())

	go queue.StartSessionConsumer(logger)

	addr := ":" + cfg.Port
	logger.Info("server starting", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
