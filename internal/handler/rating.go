package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-analytics/internal/repository"
)

// RatingHandler exposes rating submission over HTTP. It drives the same
// pair-keyed upsert the bulk ingestion path uses, so a user re-rating a
// movie overwrites their earlier rating instead of adding a second row.
type RatingHandler struct {
	Ratings *repository.RatingRepo
	Movies  *repository.MovieRepo
}

func NewRatingHandler(r *repository.RatingRepo, m *repository.MovieRepo) *RatingHandler {
	return &RatingHandler{Ratings: r, Movies: m}
}

type submitRatingReq struct {
	Rating float64 `json:"rating"`
}

type ratingResp struct {
	MovieID uint64  `json:"movie_id"`
	Rating  float64 `json:"rating"`
	Outcome string  `json:"outcome"`
}

// Submit records the authenticated user's rating for a movie. Ratings must
// fall in [1.0, 10.0].
func (h *RatingHandler) Submit(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req submitRatingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1.0 || req.Rating > 10.0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1.0 and 10.0"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	outcome, err := h.Ratings.Upsert(ctx, userID, movieID, req.Rating)
	if err != nil {
		if errors.Is(err, repository.ErrReferentialViolation) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save rating failed"})
	}

	status := http.StatusOK
	if outcome == repository.OutcomeInserted {
		status = http.StatusCreated
	}
	return c.JSON(status, ratingResp{MovieID: movieID, Rating: req.Rating, Outcome: outcome.String()})
}

// Get returns the authenticated user's rating for a movie.
func (h *RatingHandler) Get(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rt, err := h.Ratings.GetByPair(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no rating"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rating failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie_id": rt.MovieID,
		"rating":   rt.Rating,
		"rated_at": rt.RatedAt,
	})
}

// userIDFromContext extracts the user id the JWT middleware stored. JWT
// numeric claims decode as float64.
func userIDFromContext(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
