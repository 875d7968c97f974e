package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pulsefeed-backend/internal/http/response"
	errs "github.com/yungbote/pulsefeed-backend/internal/pkg/errors"
	"github.com/yungbote/pulsefeed-backend/internal/requestdata"
	"github.com/yungbote/pulsefeed-backend/internal/services"
)

type SuggestionHandler struct {
	suggestions services.SuggestionService
}

func NewSuggestionHandler(suggestions services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

func (h *SuggestionHandler) GetPeople(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	limit, err := parseLimit(c, 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	sessionID := c.DefaultQuery("session_id", rd.SessionID)

	page, err := h.suggestions.GetSuggestedPeople(c.Request.Context(), rd.UserID, limit, sessionID)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "suggestions_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"people": page,
		"count":  len(page),
	})
}
