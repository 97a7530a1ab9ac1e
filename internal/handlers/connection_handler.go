package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/models"
	"github.com/meshup-app/server/internal/services"
)

func SendConnectionRequest(cs *services.ConnectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			EventID        uuid.UUID  `json:"event_id" binding:"required"`
			ReceiverUserID string     `json:"receiver_user_id" binding:"required"`
			QuestID        *uuid.UUID `json:"quest_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		claims, ok := currentClaims(c)
		if !ok {
			return
		}

		connection, err := cs.SendRequest(c.Request.Context(), req.EventID, claims.UserID, req.ReceiverUserID, req.QuestID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(connection, "connection request sent"))
	}
}

func ListPendingConnections(cs *services.ConnectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("eventUserId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event user ID format"))
			return
		}

		connections, err := cs.PendingRequests(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(connections, "pending connections retrieved"))
	}
}

func ListRecentConnections(cs *services.ConnectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("eventUserId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event user ID format"))
			return
		}

		limit := int64(10)
		views, err := cs.RecentConnections(c.Request.Context(), id, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(views, "recent connections retrieved"))
	}
}

func UpdateConnectionStatus(cs *services.ConnectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid connection ID format"))
			return
		}

		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		connection, err := cs.UpdateStatus(c.Request.Context(), id, strings.ToUpper(req.Status))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(connection, "connection status updated"))
	}
}
