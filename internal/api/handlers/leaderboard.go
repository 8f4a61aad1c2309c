package handlers

import (
	"strconv"
	"strings"

	"challengeboard/internal/models"
	"challengeboard/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// LeaderboardHandler handles HTTP requests for the leaderboard
type LeaderboardHandler struct {
	service   *service.LeaderboardService
	validator *validator.Validate
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(svc *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		service:   svc,
		validator: validator.New(),
	}
}

// viewerFrom builds the already-authorized viewer identity from the gateway
// headers. Authorization itself happens upstream; the engine only needs to
// know whether names may be shown un-anonymized.
func viewerFrom(c *fiber.Ctx) service.Viewer {
	role := strings.ToLower(c.Get("X-Actor-Role"))
	return service.Viewer{
		TeamID:   c.Get("X-Actor-Team"),
		Elevated: role == "moderator" || role == "observer" || role == "admin",
	}
}

// GetLeaderboard handles GET /api/v1/boards/:boardId/leaderboard
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	boardID := c.Params("boardId")

	filter := service.Filter{
		Term:  c.Query("term"),
		Key:   c.Query("key"),
		Value: c.Query("value"),
		Sort:  c.Query("sort"),
	}
	filter.Skip, _ = strconv.Atoi(c.Query("skip", "0"))
	filter.Take, _ = strconv.Atoi(c.Query("take", "50"))

	if err := h.validator.Struct(&filter); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid filter",
			Message: err.Error(),
		})
	}

	leaderboard, err := h.service.Get(c.Context(), boardID, filter, viewerFrom(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to retrieve leaderboard",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(leaderboard)
}

// GetTeamScore handles GET /api/v1/boards/:boardId/leaderboard/:teamId
func (h *LeaderboardHandler) GetTeamScore(c *fiber.Ctx) error {
	boardID := c.Params("boardId")
	teamID := c.Params("teamId")

	entry, err := h.service.GetTeamScore(c.Context(), boardID, teamID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to retrieve team score",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(entry)
}

// ExportLeaderboard handles GET /api/v1/boards/:boardId/leaderboard/export
func (h *LeaderboardHandler) ExportLeaderboard(c *fiber.Ctx) error {
	boardID := c.Params("boardId")

	rows, err := h.service.Export(c.Context(), boardID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to export leaderboard",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(rows)
}

// Recompute handles POST /api/v1/leaderboard/recompute
// Runs one sweep immediately and reports which boards changed.
func (h *LeaderboardHandler) Recompute(c *fiber.Ctx) error {
	changed, err := h.service.Calculate(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Recompute failed",
			Message: err.Error(),
		})
	}

	boardIDs := make([]string, 0, len(changed))
	for _, lb := range changed {
		boardIDs = append(boardIDs, lb.BoardID)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"recomputed": boardIDs,
		"count":      len(boardIDs),
	})
}

// RecomputeTeamScore handles POST /api/v1/boards/:boardId/teams/:teamId/score
// Called by the grading pipeline right after a submission is graded.
func (h *LeaderboardHandler) RecomputeTeamScore(c *fiber.Ctx) error {
	boardID := c.Params("boardId")
	teamID := c.Params("teamId")

	score, err := h.service.RecomputeTeamBoardScore(c.Context(), teamID, boardID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to recompute team score",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"team_id":  teamID,
		"board_id": boardID,
		"score":    score,
	})
}

// GetProblemAttempts handles GET /api/v1/problems/:problemId/attempts
// Reports the submissions spent on the problem's current unsolved stage.
func (h *LeaderboardHandler) GetProblemAttempts(c *fiber.Ctx) error {
	problemID := c.Params("problemId")

	attempts, limit, err := h.service.AttemptsAtCurrentStage(c.Context(), problemID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to compute attempts",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"problem_id":      problemID,
		"attempts":        attempts,
		"max_submissions": limit,
	})
}

// HealthCheck handles GET /api/v1/health
func (h *LeaderboardHandler) HealthCheck(c *fiber.Ctx) error {
	if err := h.service.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error:   "Health check failed",
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"message": "All systems operational",
	})
}
