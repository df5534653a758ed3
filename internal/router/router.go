// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/office-charging/internal/auth"
	"github.com/iliyamo/office-charging/internal/config"
	"github.com/iliyamo/office-charging/internal/handler"
	"github.com/iliyamo/office-charging/internal/middleware"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Offices     *handler.OfficeHandler
	Users       *handler.UserHandler
	Stations    *handler.StationHandler
	Sessions    *handler.SessionHandler
	Leaderboard *handler.LeaderboardHandler
}

// Register mounts all routes.  /healthz and /v1/auth/* are public; everything
// else requires a verified bearer token.  The credential endpoints carry the
// token-bucket rate limit, and GET listings go through the Redis response
// cache when one is configured.
func Register(e *echo.Echo, h Handlers, sessions *auth.Service, rdb *redis.Client, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig) {
	e.GET("/healthz", handler.Health)

	cached := middleware.NewRedisCache(cacheCfg, rdb)
	limited := middleware.NewTokenBucket(rlCfg, rdb)
	bearer := middleware.BearerAuth(sessions)

	pub := e.Group("/v1/auth", limited)
	pub.POST("/register", h.Auth.Register)
	pub.POST("/login", h.Auth.Login)
	pub.POST("/refresh", h.Auth.Refresh)
	pub.POST("/logout", h.Auth.Logout, bearer)

	v1 := e.Group("/v1", bearer)

	v1.GET("/me", h.Users.Me)
	v1.PUT("/me", h.Users.Update)
	v1.DELETE("/me", h.Users.Delete)
	v1.GET("/users", h.Users.FindByEmail)
	v1.GET("/users/:id", h.Users.Get)

	v1.POST("/offices", h.Offices.Create)
	v1.GET("/offices", h.Offices.List, cached)
	v1.GET("/offices/:id", h.Offices.Get)
	v1.PUT("/offices/:id", h.Offices.Update)
	v1.DELETE("/offices/:id", h.Offices.Delete)

	v1.POST("/stations", h.Stations.Create)
	v1.GET("/stations", h.Stations.List, cached)
	v1.GET("/stations/:id", h.Stations.Get)
	v1.PUT("/stations/:id", h.Stations.Update)
	v1.DELETE("/stations/:id", h.Stations.Delete)

	v1.POST("/sessions", h.Sessions.Start)
	v1.POST("/sessions/:id/stop", h.Sessions.Stop)
	v1.GET("/sessions", h.Sessions.List)
	v1.GET("/sessions/:id", h.Sessions.Get)

	v1.GET("/leaderboard", h.Leaderboard.Top, cached)
}
