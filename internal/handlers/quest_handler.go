package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/background"
	"github.com/meshup-app/server/internal/models"
	"github.com/meshup-app/server/internal/services"
)

// GenerateQuestions triggers AI question generation for one attendee.
// The work runs in the background; clients poll the status endpoint.
func GenerateQuestions(qs *services.QuestService, runner *background.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("eventUserId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event user ID format"))
			return
		}

		taskName := fmt.Sprintf("quest-generation-for-user-%s", id)
		runner.Run(taskName, func(ctx context.Context) (map[string]interface{}, error) {
			result, err := qs.GenerateForAttendee(ctx, id, services.DefaultQuestCount)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"created": len(result.Created),
				"failed":  result.Failed,
			}, nil
		})

		c.JSON(http.StatusAccepted, models.ProcessingResponse("quest generation started"))
	}
}

// GenerateEventQuestions runs generation for every accepted attendee of
// an event that has no questions yet.
func GenerateEventQuestions(qs *services.QuestService, runner *background.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}

		taskName := fmt.Sprintf("quest-generation-for-event-%s", id)
		runner.Run(taskName, func(ctx context.Context) (map[string]interface{}, error) {
			results, err := qs.GenerateForEvent(ctx, id, services.DefaultQuestCount)
			if err != nil {
				return nil, err
			}
			succeeded := 0
			for _, r := range results {
				if r.Success {
					succeeded++
				}
			}
			return map[string]interface{}{
				"attendees": len(results),
				"succeeded": succeeded,
			}, nil
		})

		c.JSON(http.StatusAccepted, models.ProcessingResponse("event quest generation started"))
	}
}

// GenerationStatus reports whether an attendee's questions are ready,
// including the state of the background job if one was recorded.
func GenerationStatus(qs *services.QuestService, jobs models.JobRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("eventUserId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event user ID format"))
			return
		}

		job, jobErr := jobs.GetJob(c.Request.Context(), fmt.Sprintf("quest-generation-for-user-%s", id))
		if jobErr != nil {
			job = nil
		}

		status, err := qs.Status(c.Request.Context(), id, job)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(status, "generation status retrieved"))
	}
}

// AssignQuests draws each accepted attendee a random set of quests
// authored by other attendees. Runs in the background since events can
// be large.
func AssignQuests(as *services.AssignService, runner *background.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}

		taskName := fmt.Sprintf("quest-assignment-for-event-%s", id)
		runner.Run(taskName, func(ctx context.Context) (map[string]interface{}, error) {
			summary, err := as.AssignRandomQuests(ctx, id, services.DefaultQuestsPerUser)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"total_assigned": summary.TotalAssigned,
				"by_recipient":   summary.ByRecipient,
			}, nil
		})

		c.JSON(http.StatusAccepted, models.ProcessingResponse("quest assignment started"))
	}
}

func GetQuestBoard(qs *services.QuestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("eventUserId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event user ID format"))
			return
		}

		board, err := qs.BoardForAttendee(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, services.ErrAttendeeNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse(err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(board, "quest board retrieved"))
	}
}

// VerifyQuest checks that the person an attendee just met carries a tag
// the quest asks for, and marks the quest completed when they do.
func VerifyQuest(vs *services.VerifyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		questID, err := uuid.Parse(c.Param("questId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid quest ID format"))
			return
		}

		var req struct {
			CompletedWithUserID string `json:"completed_with_user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		question, err := vs.VerifyCompletion(c.Request.Context(), questID, req.CompletedWithUserID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDraftNotFound), errors.Is(err, services.ErrAttendeeNotFound):
				c.JSON(http.StatusNotFound, models.ErrorResponse(err.Error()))
			case errors.Is(err, services.ErrNoMatchingTags):
				c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse(err.Error()))
			default:
				c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(question, "quest completed"))
	}
}
