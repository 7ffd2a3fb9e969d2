package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dori/sweet/internal/api"
	"github.com/dori/sweet/internal/identity"
	"github.com/dori/sweet/internal/model"
	"github.com/dori/sweet/internal/webhook"
)

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, api.ErrorResponse{Error: msg})
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGetTasks(c *gin.Context) {
	address := identity.Normalize(c.Query("address"))
	if address == "" {
		fail(c, http.StatusBadRequest, api.MsgAddressRequired)
		return
	}

	tasks, err := s.store.FetchTasks(c.Request.Context(), address)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, api.TasksResponse{Tasks: tasks})
}

func (s *Server) handleBulkTasks(c *gin.Context) {
	var req api.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	address := identity.Normalize(req.Address)
	tasks, err := api.NormalizeTasks(req.Tasks)
	if address == "" || errors.Is(err, api.ErrNotArray) {
		fail(c, http.StatusBadRequest, api.MsgBulkRequired)
		return
	}
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.ReplaceTasks(c.Request.Context(), address, tasks); err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

func (s *Server) handleGetPreferences(c *gin.Context) {
	address := identity.Normalize(c.Query("address"))
	if address == "" {
		fail(c, http.StatusBadRequest, api.MsgAddressRequired)
		return
	}

	prefs, err := s.store.GetPreferences(c.Request.Context(), address)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, api.PreferencesResponse{Preferences: prefs})
}

func (s *Server) handlePutPreferences(c *gin.Context) {
	var req api.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	address := identity.Normalize(req.Address)
	if address == "" {
		fail(c, http.StatusBadRequest, api.MsgAddressRequired)
		return
	}

	if err := s.store.PutPreferences(c.Request.Context(), address, req.Preferences()); err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

func (s *Server) handleListNotifications(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		fail(c, http.StatusBadRequest, "user_id required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	list, err := s.store.ListNotifications(c.Request.Context(), userID, limit)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// handleWebhook acknowledges every parseable event. Store failures are
// logged; only a body that cannot be parsed is reported to the caller.
func (s *Server) handleWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.logger.Error("webhook body unreadable", zap.Error(err))
		fail(c, http.StatusInternalServerError, api.MsgInternalError)
		return
	}

	event, err := webhook.Decode(body)
	if err != nil {
		s.logger.Error("webhook error", zap.Error(err))
		fail(c, http.StatusInternalServerError, api.MsgInternalError)
		return
	}

	s.logger.Debug("webhook received", zap.String("type", event.Type()), zap.ByteString("body", body))
	ctx := c.Request.Context()

	switch ev := event.(type) {
	case webhook.UserConnected:
		if err := s.store.UpsertProfile(ctx, ev.Profile); err != nil {
			s.logger.Error("error creating user", zap.Int64("fid", ev.Profile.FID), zap.Error(err))
		}
	case webhook.UserDisconnected:
		s.logger.Info("user disconnected", zap.Int64("fid", ev.FID))
	case webhook.Unrecognized:
		s.logger.Info("unknown webhook type", zap.String("type", ev.Kind))
	default:
		n, ok := webhook.NotificationFor(event)
		if !ok {
			break
		}
		if _, err := s.store.InsertNotification(ctx, n); err != nil {
			s.logger.Error("error creating notification",
				zap.String("type", string(n.Type)),
				zap.String("user_id", n.UserID),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}
