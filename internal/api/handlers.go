package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/scenecast/internal/comments"
)

func (s *Server) listThreads(c echo.Context) error {
	filter := c.QueryParam("scene_prefix")

	threads, err := s.store.ListThreads(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list threads")
	}
	if threads == nil {
		threads = []comments.Thread{}
	}
	return c.JSON(http.StatusOK, threads)
}

func (s *Server) createThread(c echo.Context) error {
	var t comments.Thread
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if t.ID == "" || t.SceneID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Thread id and scene id are required")
	}
	if !comments.ValidMessage(t.Message) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message")
	}
	if t.Status == "" {
		t.Status = comments.StatusOpen
	}

	if err := s.store.InsertThread(c.Request().Context(), t); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create thread")
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) createReply(c echo.Context) error {
	var r comments.Reply
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if r.ID == "" || r.CommentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Reply id and thread id are required")
	}
	if !comments.ValidMessage(r.Message) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message")
	}

	if err := s.store.InsertReply(c.Request().Context(), r); err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create reply")
	}
	return c.JSON(http.StatusCreated, r)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) updateThreadStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	status := comments.Status(req.Status)
	if status != comments.StatusOpen && status != comments.StatusResolved {
		return echo.NewHTTPError(http.StatusBadRequest, "Status must be open or resolved")
	}

	if err := s.store.UpdateThreadStatus(c.Request().Context(), c.Param("id"), status); err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update status")
	}
	return c.NoContent(http.StatusNoContent)
}

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) updateThreadMessage(c echo.Context) error {
	return s.updateMessage(c, s.store.UpdateThreadMessage, "Thread")
}

func (s *Server) updateReplyMessage(c echo.Context) error {
	return s.updateMessage(c, s.store.UpdateReplyMessage, "Reply")
}

func (s *Server) updateMessage(c echo.Context, update func(ctx context.Context, id, text string) error, kind string) error {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !comments.ValidMessage(req.Message) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message")
	}

	if err := update(c.Request().Context(), c.Param("id"), strings.TrimSpace(req.Message)); err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, kind+" not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update message")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteThread(c echo.Context) error {
	if err := s.store.DeleteThread(c.Request().Context(), c.Param("id")); err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete thread")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteReply(c echo.Context) error {
	if err := s.store.DeleteReply(c.Request().Context(), c.Param("id")); err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Reply not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete reply")
	}
	return c.NoContent(http.StatusNoContent)
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}
