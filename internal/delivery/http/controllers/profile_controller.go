package controllers

import (
	"log/slog"
	"net/http"

	h "speakerhub/internal/delivery/http/helpers"
	"speakerhub/internal/domain"
)

// SearchProfilesRequest is the request body for POST /profiles/search.
type SearchProfilesRequest struct {
	Keywords     []string `json:"keywords" validate:"required,min=1,max=10"`
	Location     string   `json:"location" validate:"max=100"`
	MinFollowers int      `json:"min_followers" validate:"gte=0"`
	MaxResults   int      `json:"max_results" validate:"omitempty,min=1,max=20"`
}

// FetchProfileRequest is the request body for POST /profiles/fetch.
type FetchProfileRequest struct {
	ProfileURL string `json:"profile_url" validate:"required,http_url"`
}

// ImportProfileRequest is the request body for POST /profiles/import, usually a snapshot
// returned by search or fetch.
type ImportProfileRequest struct {
	ProfileURL string   `json:"profile_url" validate:"required,http_url"`
	Name       string   `json:"name" validate:"required,min=3,max=100"`
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	Location   string   `json:"location"`
	Bio        string   `json:"bio"`
	PhotoURL   string   `json:"photo_url" validate:"omitempty,http_url"`
	Followers  int      `json:"followers" validate:"gte=0"`
	Skills     []string `json:"skills"`
}

type ProfileController struct {
	Logger   *slog.Logger
	Importer domain.ProfileImporter
}

func NewProfileController(logger *slog.Logger, importer domain.ProfileImporter) *ProfileController {
	return &ProfileController{Logger: logger, Importer: importer}
}

// SearchProfiles godoc
// @Summary Search external profiles
// @Description Runs a people search on the profile network. Results already imported carry existing_speaker_id.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SearchProfilesRequest true "Search criteria"
// @Success 200 {object} helpers.APIResponse "data contains the profile results"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: external_service"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /profiles/search [post]
func (c *ProfileController) SearchProfiles(w http.ResponseWriter, r *http.Request) {
	var req SearchProfilesRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	results, err := c.Importer.SearchCandidates(r.Context(), domain.SearchCriteria{
		Keywords:     req.Keywords,
		Location:     req.Location,
		MinFollowers: req.MinFollowers,
		MaxResults:   req.MaxResults,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if len(results) == 0 {
		h.WriteJSONFlash(w, http.StatusOK, []domain.ProfileResult{}, h.FlashInfo, "No profiles matched the search.")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, results)
}

// FetchProfile godoc
// @Summary Read one external profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body FetchProfileRequest true "Profile URL"
// @Success 200 {object} helpers.APIResponse "data contains the profile result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: external_service"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /profiles/fetch [post]
func (c *ProfileController) FetchProfile(w http.ResponseWriter, r *http.Request) {
	var req FetchProfileRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Importer.FetchProfile(r.Context(), req.ProfileURL)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if result.Status == domain.ProfilePartial {
		h.WriteJSONFlash(w, http.StatusOK, result, h.FlashWarning, "Some profile fields could not be read.")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, result)
}

// ImportProfile godoc
// @Summary Import a profile as a speaker
// @Description Creates a speaker from a profile snapshot. Skills become keywords, created when missing.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ImportProfileRequest true "Profile snapshot"
// @Success 201 {object} helpers.APIResponse "data contains the created speaker"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already imported)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/import [post]
func (c *ProfileController) ImportProfile(w http.ResponseWriter, r *http.Request) {
	var req ImportProfileRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	speaker, err := c.Importer.ImportCandidate(r.Context(), domain.ProfileSnapshot{
		ProfileURL: req.ProfileURL,
		Name:       req.Name,
		Title:      req.Title,
		Company:    req.Company,
		Location:   req.Location,
		Bio:        req.Bio,
		PhotoURL:   req.PhotoURL,
		Followers:  req.Followers,
		Skills:     req.Skills,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONFlash(w, http.StatusCreated, speaker, h.FlashSuccess, "Speaker "+speaker.Name+" imported.")
}
