package controllers

import (
	"log/slog"
	"net/http"

	h "speakerhub/internal/delivery/http/helpers"
	"speakerhub/internal/domain"
)

// SpeakerRequest is the request body for POST /speakers and PUT /speakers/{speakerID}.
// keyword_ids replaces the whole keyword set.
type SpeakerRequest struct {
	Name       string   `json:"name" validate:"required,min=3,max=100"`
	Email      string   `json:"email" validate:"required,email,max=100"`
	Phone      string   `json:"phone" validate:"max=20"`
	Bio        string   `json:"bio"`
	PhotoURL   string   `json:"photo_url" validate:"omitempty,http_url"`
	ProfileURL string   `json:"profile_url" validate:"omitempty,http_url"`
	KeywordIDs []string `json:"keyword_ids" validate:"dive,uuid"`
}

func (s SpeakerRequest) input() domain.SpeakerInput {
	return domain.SpeakerInput{
		Name:       s.Name,
		Email:      s.Email,
		Phone:      s.Phone,
		Bio:        s.Bio,
		PhotoURL:   s.PhotoURL,
		ProfileURL: s.ProfileURL,
		KeywordIDs: s.KeywordIDs,
	}
}

// RefreshProfileResponse is the data payload for POST /speakers/{speakerID}/refresh-profile.
type RefreshProfileResponse struct {
	Speaker *domain.Speaker       `json:"speaker"`
	Result  *domain.ProfileResult `json:"result"`
}

type SpeakerController struct {
	Logger   *slog.Logger
	Service  domain.SpeakerService
	Importer domain.ProfileImporter
}

func NewSpeakerController(logger *slog.Logger, svc domain.SpeakerService, importer domain.ProfileImporter) *SpeakerController {
	return &SpeakerController{
		Logger:   logger,
		Service:  svc,
		Importer: importer,
	}
}

// ListSpeakers godoc
// @Summary Search speakers
// @Description Case-insensitive substring match on name. keyword matches the first keyword (alphabetical) containing the text. Ordered by name.
// @Tags speakers
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name contains"
// @Param keyword query string false "Keyword contains"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 10)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers [get]
func (c *SpeakerController) ListSpeakers(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	filter := domain.SpeakerFilter{
		Name:    r.URL.Query().Get("name"),
		Keyword: r.URL.Query().Get("keyword"),
	}
	speakers, total, err := c.Service.Search(r.Context(), filter, params)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.NewPage(speakers, params, total))
}

// CreateSpeaker godoc
// @Summary Create a speaker
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SpeakerRequest true "Speaker data"
// @Success 201 {object} helpers.APIResponse "data contains the created speaker"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown keyword)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers [post]
func (c *SpeakerController) CreateSpeaker(w http.ResponseWriter, r *http.Request) {
	var req SpeakerRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	speaker, err := c.Service.Create(r.Context(), req.input())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONFlash(w, http.StatusCreated, speaker, h.FlashSuccess, "Speaker "+speaker.Name+" created.")
}

// GetSpeaker godoc
// @Summary Get a speaker
// @Description Returns the speaker with keywords and the events it is linked to.
// @Tags speakers
// @Produce json
// @Security BearerAuth
// @Param speakerID path string true "Speaker ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains speaker and events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID} [get]
func (c *SpeakerController) GetSpeaker(w http.ResponseWriter, r *http.Request) {
	speakerID, ok := h.PathID(w, r, "speakerID")
	if !ok {
		return
	}
	detail, err := c.Service.Get(r.Context(), speakerID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, detail)
}

// UpdateSpeaker godoc
// @Summary Update a speaker
// @Description Replaces every editable field, including the keyword set.
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param speakerID path string true "Speaker ID (UUID)"
// @Param body body SpeakerRequest true "Speaker data"
// @Success 200 {object} helpers.APIResponse "data contains the updated speaker"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID} [put]
func (c *SpeakerController) UpdateSpeaker(w http.ResponseWriter, r *http.Request) {
	speakerID, ok := h.PathID(w, r, "speakerID")
	if !ok {
		return
	}
	var req SpeakerRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	speaker, err := c.Service.Update(r.Context(), speakerID, req.input())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONFlash(w, http.StatusOK, speaker, h.FlashSuccess, "Speaker "+speaker.Name+" updated.")
}

// DeleteSpeaker godoc
// @Summary Delete a speaker
// @Description Removes the speaker, its ratings and event links, and recomputes the affected event ratings.
// @Tags speakers
// @Produce json
// @Security BearerAuth
// @Param speakerID path string true "Speaker ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID} [delete]
func (c *SpeakerController) DeleteSpeaker(w http.ResponseWriter, r *http.Request) {
	speakerID, ok := h.PathID(w, r, "speakerID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), speakerID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONFlash(w, http.StatusOK, StatusResponse{Status: "deleted"}, h.FlashSuccess, "Speaker deleted.")
}

// RefreshProfile godoc
// @Summary Refresh a speaker from its profile page
// @Description Re-reads the speaker's external profile. Only fields found on the page are overwritten; skills are merged into keywords.
// @Tags speakers
// @Produce json
// @Security BearerAuth
// @Param speakerID path string true "Speaker ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains speaker and the profile result"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: domain_rule (no profile url)"
// @Failure 502 {object} helpers.APIResponse "error.code: external_service"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /speakers/{speakerID}/refresh-profile [post]
func (c *SpeakerController) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	speakerID, ok := h.PathID(w, r, "speakerID")
	if !ok {
		return
	}
	speaker, result, err := c.Importer.RefreshFromProfile(r.Context(), speakerID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	data := RefreshProfileResponse{Speaker: speaker, Result: result}
	if result.Status == domain.ProfilePartial {
		h.WriteJSONFlash(w, http.StatusOK, data, h.FlashWarning, "Profile refreshed, but some fields could not be read.")
		return
	}
	h.WriteJSONFlash(w, http.StatusOK, data, h.FlashSuccess, "Profile refreshed.")
}
