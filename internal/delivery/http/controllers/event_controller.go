package controllers

import (
	"log/slog"
	"net/http"
	"time"

	h "speakerhub/internal/delivery/http/helpers"
	"speakerhub/internal/domain"
)

// EventRequest is the request body for POST /events and PUT /events/{eventID}.
// Times use the layout "YYYY-MM-DD HH:MM" in UTC. speaker_ids replaces the whole speaker set.
type EventRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description"`
	Location    string   `json:"location" validate:"required,max=100"`
	StartTime   string   `json:"start_time" validate:"required,datetime=2006-01-02 15:04"`
	EndTime     string   `json:"end_time" validate:"required,datetime=2006-01-02 15:04"`
	SpeakerIDs  []string `json:"speaker_ids" validate:"dive,uuid"`
}

// Validate implements helpers.Validator.
func (e EventRequest) Validate() map[string]string {
	start, errStart := time.Parse(DateTimeLayout, e.StartTime)
	end, errEnd := time.Parse(DateTimeLayout, e.EndTime)
	if errStart == nil && errEnd == nil && end.Before(start) {
		return map[string]string{"end_time": "must not be before start_time"}
	}
	return nil
}

// input assumes Validate and the tag rules passed.
func (e EventRequest) input() domain.EventInput {
	start, _ := time.Parse(DateTimeLayout, e.StartTime)
	end, _ := time.Parse(DateTimeLayout, e.EndTime)
	return domain.EventInput{
		Name:        e.Name,
		Description: e.Description,
		Location:    e.Location,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		SpeakerIDs:  e.SpeakerIDs,
	}
}

// RateSpeakerRequest is the request body for POST /events/{eventID}/speakers/{speakerID}/rating.
// The 0-10 range is checked by the rating service after the speaker and event rules.
type RateSpeakerRequest struct {
	Score   *float64 `json:"score" validate:"required"`
	Comment string   `json:"comment" validate:"max=1000"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Ratings domain.RatingService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, ratings domain.RatingService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Ratings: ratings,
	}
}

// ListEvents godoc
// @Summary Filter events
// @Description period is past (ended), upcoming (not started) or all. Unknown values mean all. Ordered by start time, newest first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name contains"
// @Param period query string false "past | upcoming | all"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 10)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	q := r.URL.Query()
	events, total, err := c.Service.Filter(r.Context(), q.Get("name"), domain.ParseEventPeriod(q.Get("period")), params)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.NewPage(events, params, total))
}

// CreateEvent godoc
// @Summary Create an event
// @Description Linked speakers are marked as having participated.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown speaker)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Create(r.Context(), req.input())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONFlash(w, http.StatusCreated, event, h.FlashSuccess, "Event "+event.Name+" created.")
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the event with its speakers and ratings.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains event, speakers and ratings"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathID(w, r, "eventID")
	if !ok {
		return
	}
	detail, err := c.Service.Get(r.Context(), eventID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces every editable field and the speaker set. Speakers removed from their last event lose the participated flag.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body EventRequest true "Event data"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req EventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Update(r.Context(), eventID, req.input())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONFlash(w, http.StatusOK, event, h.FlashSuccess, "Event "+event.Name+" updated.")
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and its ratings, then recomputes the affected speakers.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathID(w, r, "eventID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), eventID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONFlash(w, http.StatusOK, StatusResponse{Status: "deleted"}, h.FlashSuccess, "Event deleted.")
}

// RateSpeaker godoc
// @Summary Rate a speaker for an event
// @Description The speaker must be linked to the event and the event must have ended. Rating again replaces the previous score.
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param speakerID path string true "Speaker ID (UUID)"
// @Param body body RateSpeakerRequest true "Score 0-10 and optional comment"
// @Success 201 {object} helpers.APIResponse "data contains the new rating"
// @Success 200 {object} helpers.APIResponse "data contains the replaced rating"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: domain_rule"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/speakers/{speakerID}/rating [post]
func (c *EventController) RateSpeaker(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathID(w, r, "eventID")
	if !ok {
		return
	}
	speakerID, ok := h.PathID(w, r, "speakerID")
	if !ok {
		return
	}
	var req RateSpeakerRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	rating, created, err := c.Ratings.Rate(r.Context(), domain.RateInput{
		EventID:   eventID,
		SpeakerID: speakerID,
		Score:     *req.Score,
		Comment:   req.Comment,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if created {
		h.WriteJSONFlash(w, http.StatusCreated, rating, h.FlashSuccess, "Rating recorded.")
		return
	}
	h.WriteJSONFlash(w, http.StatusOK, rating, h.FlashInfo, "Rating updated.")
}

// ListRatings godoc
// @Summary List the ratings of an event
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the ratings"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/ratings [get]
func (c *EventController) ListRatings(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.PathID(w, r, "eventID")
	if !ok {
		return
	}
	ratings, err := c.Ratings.ListByEvent(r.Context(), eventID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if ratings == nil {
		ratings = []*domain.Rating{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, ratings)
}
