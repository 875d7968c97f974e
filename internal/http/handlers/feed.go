package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/pulsefeed-backend/internal/domain"
	"github.com/yungbote/pulsefeed-backend/internal/http/response"
	errs "github.com/yungbote/pulsefeed-backend/internal/pkg/errors"
	"github.com/yungbote/pulsefeed-backend/internal/requestdata"
	"github.com/yungbote/pulsefeed-backend/internal/services"
)

type FeedHandler struct {
	feed services.FeedService
}

func NewFeedHandler(feed services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// GetFeed serves one personalized page. The class defaults to video; the
// session id ties the page's shuffle seed to the client session.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	class := types.ContentClass(c.DefaultQuery("class", string(types.ClassVideo)))
	limit, err := parseLimit(c, 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	sessionID := c.DefaultQuery("session_id", rd.SessionID)

	page, err := h.feed.GetPersonalizedFeed(c.Request.Context(), rd.UserID, class, limit, sessionID)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "feed_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"items": page,
		"count": len(page),
	})
}

// GetViral serves the trending surface. It is viewer-independent and cached.
func (h *FeedHandler) GetViral(c *gin.Context) {
	var class *types.ContentClass
	if raw := c.Query("class"); raw != "" {
		cc := types.ContentClass(raw)
		if !cc.Valid() {
			response.RespondError(c, http.StatusBadRequest, "invalid_class", nil)
			return
		}
		class = &cc
	}
	limit, err := parseLimit(c, 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}

	ids, err := h.feed.GetViralContent(c.Request.Context(), class, limit)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "viral_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"content_ids": ids,
		"count":       len(ids),
	})
}

func parseLimit(c *gin.Context, fallback int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return n, nil
}
