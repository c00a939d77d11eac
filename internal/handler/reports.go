package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-analytics/internal/analytics"
)

// ReportsHandler serves the read-only aggregate reports. Reports go straight
// to the store (with a Redis result cache in front); they never touch the
// ingestion code paths.
type ReportsHandler struct {
	Analytics *analytics.Service
}

func NewReportsHandler(a *analytics.Service) *ReportsHandler {
	return &ReportsHandler{Analytics: a}
}

// TopRated returns the highest weighted-rated movies.
// Query params: min_votes (default 100), limit (default 20, max 100).
func (h *ReportsHandler) TopRated(c echo.Context) error {
	minVotes := intQuery(c, "min_votes", 100)
	limit := intQuery(c, "limit", 20)
	if limit > 100 {
		limit = 100
	}

	ctx, cancel := reportCtx(c)
	defer cancel()

	movies, err := h.Analytics.TopRatedMovies(ctx, minVotes, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": movies})
}

// GenrePopularity returns per-genre, per-year aggregates.
// Query param: since (default 2000).
func (h *ReportsHandler) GenrePopularity(c echo.Context) error {
	since := intQuery(c, "since", 2000)

	ctx, cancel := reportCtx(c)
	defer cancel()

	stats, err := h.Analytics.GenrePopularity(ctx, since)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"genres": stats})
}

// ReleaseTrends returns per-year aggregates. Query param: since (default 1980).
func (h *ReportsHandler) ReleaseTrends(c echo.Context) error {
	since := intQuery(c, "since", 1980)

	ctx, cancel := reportCtx(c)
	defer cancel()

	stats, err := h.Analytics.ReleaseTrends(ctx, since)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"years": stats})
}

// ActiveUsers returns the users with the most submitted ratings.
// Query param: limit (default 20, max 100).
func (h *ReportsHandler) ActiveUsers(c echo.Context) error {
	limit := intQuery(c, "limit", 20)
	if limit > 100 {
		limit = 100
	}

	ctx, cancel := reportCtx(c)
	defer cancel()

	users, err := h.Analytics.MostActiveUsers(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// RatingDistribution returns the histogram of user ratings.
func (h *ReportsHandler) RatingDistribution(c echo.Context) error {
	ctx, cancel := reportCtx(c)
	defer cancel()

	bins, err := h.Analytics.RatingDistribution(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"distribution": bins})
}

func reportCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 10*time.Second)
}

func intQuery(c echo.Context, name string, def int) int {
	if s := c.QueryParam(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
