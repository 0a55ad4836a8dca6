package controllers

import (
	"log/slog"
	"net/http"

	h "speakerhub/internal/delivery/http/helpers"
	"speakerhub/internal/domain"
)

// CreateKeywordRequest is the request body for POST /keywords.
type CreateKeywordRequest struct {
	Text string `json:"text" validate:"required,min=2,max=50"`
}

type KeywordController struct {
	Logger  *slog.Logger
	Service domain.KeywordService
}

func NewKeywordController(logger *slog.Logger, svc domain.KeywordService) *KeywordController {
	return &KeywordController{Logger: logger, Service: svc}
}

// ListKeywords godoc
// @Summary List keywords
// @Description Alphabetical.
// @Tags keywords
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the keywords"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /keywords [get]
func (c *KeywordController) ListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := c.Service.List(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if keywords == nil {
		keywords = []*domain.Keyword{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, keywords)
}

// CreateKeyword godoc
// @Summary Create a keyword
// @Tags keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateKeywordRequest true "Keyword"
// @Success 201 {object} helpers.APIResponse "data contains the keyword"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /keywords [post]
func (c *KeywordController) CreateKeyword(w http.ResponseWriter, r *http.Request) {
	var req CreateKeywordRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	keyword, err := c.Service.Create(r.Context(), req.Text)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONFlash(w, http.StatusCreated, keyword, h.FlashSuccess, "Keyword "+keyword.Text+" added.")
}

// DeleteKeyword godoc
// @Summary Delete a keyword
// @Description Refused while any speaker still uses the keyword.
// @Tags keywords
// @Produce json
// @Security BearerAuth
// @Param keywordID path string true "Keyword ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (keyword in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /keywords/{keywordID} [delete]
func (c *KeywordController) DeleteKeyword(w http.ResponseWriter, r *http.Request) {
	keywordID, ok := h.PathID(w, r, "keywordID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), keywordID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONFlash(w, http.StatusOK, StatusResponse{Status: "deleted"}, h.FlashSuccess, "Keyword deleted.")
}
