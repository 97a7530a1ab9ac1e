package services

import "errors"

// Operation-boundary errors. Handlers map these onto the
// {success:false, error} response; nothing is thrown past the service
// layer.
var (
	// not-found
	ErrEventNotFound    = errors.New("event not found")
	ErrAttendeeNotFound = errors.New("event user not found")
	ErrDraftNotFound    = errors.New("quest not found")

	// precondition-failed
	ErrAlreadyHasQuests     = errors.New("user already has questions assigned for this event")
	ErrNotEnoughAttendees   = errors.New("not enough accepted attendees to assign quests")
	ErrNoAssignmentsCreated = errors.New("no quest assignments could be created")
	ErrNoMatchingTags       = errors.New("no matching tags between attendee and quest")

	// external-call-failed
	ErrGenerationFailed = errors.New("failed to generate questions with AI")
	ErrNoQuestsParsed   = errors.New("no valid questions were generated")

	// validation-failed
	ErrAllWritesFailed = errors.New("failed to create any quests - all attempts failed")
)
