package web

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tomz197/nosecatch/internal/leaderboard"
)

const requestTimeout = 5 * time.Second

// handleIndex serves the embedded page.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	if len(s.opts.Index) == 0 {
		return fiber.ErrNotFound
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(s.opts.Index)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

// handleLeaderboard returns the best scores, ?limit=N capped at DefaultLimit.
func (s *Server) handleLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", leaderboard.DefaultLimit)
	if limit <= 0 || limit > leaderboard.DefaultLimit {
		limit = leaderboard.DefaultLimit
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()
	top, err := s.store.Top(ctx, limit)
	if err != nil {
		return err
	}
	if top == nil {
		top = []leaderboard.Entry{}
	}
	return c.JSON(top)
}

// ScoreRequest is the body of POST /api/scores.
type ScoreRequest struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// handleSubmitScore stores a score. Unlike in-game saves a name is required.
func (s *Server) handleSubmitScore(c *fiber.Ctx) error {
	var req ScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if req.Score < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "score must not be negative")
	}

	entry := leaderboard.NewEntry(req.Name, req.Score, time.Now())
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()
	if err := s.store.Save(ctx, entry); err != nil {
		return err
	}
	s.log.Info("score submitted", zap.String("user", entry.Username), zap.Int("score", entry.Score))
	return c.Status(fiber.StatusCreated).JSON(entry)
}
