package handlers

import (
	"net/http"
	"strconv"

	"famwish/internal/services"
	"famwish/pkg/logger"

	"github.com/labstack/echo/v4"
)

type LeaderboardHandler struct {
	leaderboard *services.Leaderboard
	log         logger.Logger
}

func NewLeaderboardHandler(leaderboard *services.Leaderboard, log logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
		log:         log,
	}
}

// TopBidders handles GET /api/v1/leaderboard/bidders
func (h *LeaderboardHandler) TopBidders(c echo.Context) error {
	limit := 0
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = parsed
	}

	totals, err := h.leaderboard.TopBidders(c.Request().Context(), limit)
	if err != nil {
		h.log.Error("Failed to load leaderboard", "error", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"bidders": totals})
}

// CharityRaised handles GET /api/v1/charities/:id/raised
func (h *LeaderboardHandler) CharityRaised(c echo.Context) error {
	charityID := c.Param("id")

	raised, err := h.leaderboard.CharityRaised(c.Request().Context(), charityID)
	if err != nil {
		h.log.Error("Failed to load charity total", "charity_id", charityID, "error", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"charity_id": charityID,
		"raised":     raised,
	})
}
