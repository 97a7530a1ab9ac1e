package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/models"
	"github.com/meshup-app/server/internal/services"
)

func RegisterAttendee(ats *services.AttendeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegistrationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		claims, ok := currentClaims(c)
		if !ok {
			return
		}
		if input.UserID == "" {
			input.UserID = claims.UserID
		}
		if input.Address == "" {
			input.Address = claims.Address
		}

		eventUser, err := ats.Register(c.Request.Context(), input)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(eventUser, "registration submitted for approval"))
	}
}

// UpdateAttendeeStatus approves or rejects a registration. Approval kicks
// off quest generation in the background, so the client gets a PROCESSING
// response and polls the generation status endpoint.
func UpdateAttendeeStatus(ats *services.AttendeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event user ID format"))
			return
		}

		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		eventUser, processing, err := ats.UpdateStatus(c.Request.Context(), id, strings.ToUpper(req.Status))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		if processing {
			c.JSON(http.StatusAccepted, models.ProcessingResponse("attendee accepted, quest generation started"))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(eventUser, "attendee status updated"))
	}
}

func RemoveAttendee(ats *services.AttendeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := uuid.Parse(c.Param("eventId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}
		userID := strings.TrimSpace(c.Param("userId"))
		if userID == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("user ID is required"))
			return
		}

		if err := ats.Remove(c.Request.Context(), userID, eventID); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "attendee removed successfully"))
	}
}

func RegisterNfc(ats *services.AttendeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			EventSlug  string `json:"event_slug" binding:"required"`
			NfcAddress string `json:"nfc_address" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		claims, ok := currentClaims(c)
		if !ok {
			return
		}

		eventUser, err := ats.RegisterNfc(c.Request.Context(), claims.UserID, req.EventSlug, req.NfcAddress)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(eventUser, "NFC tag registered successfully"))
	}
}

// VerifyNfc is hit when someone taps an attendee's tag. It is public so
// a phone without a session can still resolve who it just met.
func VerifyNfc(ats *services.AttendeeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := strings.TrimSpace(c.Query("event"))
		nfcAddress := strings.TrimSpace(c.Query("tag"))
		if slug == "" || nfcAddress == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("event and tag query parameters are required"))
			return
		}

		identity, err := ats.VerifyNfc(c.Request.Context(), slug, nfcAddress)
		if err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(identity, "NFC tag verified"))
	}
}
