// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-analytics/internal/handler"
	"github.com/iliyamo/movie-analytics/internal/middleware"
)

// RegisterRoutes wires up all endpoints. Reports are public reads; rating
// submission requires a valid access token.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler, r *handler.RatingHandler, rep *handler.ReportsHandler, jwtSecret string) {
	e.GET("/healthz", handler.Health)

	auth := e.Group("/v1/auth")
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)

	reports := e.Group("/v1/reports")
	reports.GET("/top-rated", rep.TopRated)
	reports.GET("/genre-popularity", rep.GenrePopularity)
	reports.GET("/release-trends", rep.ReleaseTrends)
	reports.GET("/rating-distribution", rep.RatingDistribution)
	reports.GET("/active-users", rep.ActiveUsers)

	protected := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	protected.PUT("/movies/:id/rating", r.Submit)
	protected.GET("/movies/:id/rating", r.Get)
}
