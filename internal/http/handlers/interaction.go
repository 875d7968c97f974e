package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pulsefeed-backend/internal/http/response"
	errs "github.com/yungbote/pulsefeed-backend/internal/pkg/errors"
	"github.com/yungbote/pulsefeed-backend/internal/requestdata"
	"github.com/yungbote/pulsefeed-backend/internal/services"
)

// maxBatchSize bounds one ingest call; clients flush their buffers well below
// this.
const maxBatchSize = 200

type InteractionHandler struct {
	interactions services.InteractionService
}

func NewInteractionHandler(interactions services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

type ingestInteractionsRequest struct {
	Interactions []services.InteractionInput `json:"interactions"`
}

// Ingest accepts a single interaction object, a bare array, or an envelope
// with an "interactions" array. Events are recorded independently; the reply
// reports how many were accepted.
func (h *InteractionHandler) Ingest(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(raw) == 0 {
		response.RespondError(c, http.StatusBadRequest, "empty_body", nil)
		return
	}

	var inputs []services.InteractionInput
	var env ingestInteractionsRequest
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Interactions) > 0 {
		inputs = env.Interactions
	} else {
		var arr []services.InteractionInput
		if err2 := json.Unmarshal(raw, &arr); err2 == nil {
			inputs = arr
		} else {
			var one services.InteractionInput
			if err3 := json.Unmarshal(raw, &one); err3 != nil {
				response.RespondError(c, http.StatusBadRequest, "invalid_json", err3)
				return
			}
			inputs = []services.InteractionInput{one}
		}
	}
	if len(inputs) == 0 {
		response.RespondError(c, http.StatusBadRequest, "empty_batch", nil)
		return
	}
	if len(inputs) > maxBatchSize {
		response.RespondError(c, http.StatusBadRequest, "batch_too_large", nil)
		return
	}

	accepted := 0
	var firstErr error
	for i := range inputs {
		// The token identifies the viewer; the body cannot speak for others.
		inputs[i].ViewerID = rd.UserID
		if inputs[i].SessionID == "" {
			inputs[i].SessionID = rd.SessionID
		}
		if err := h.interactions.RecordInteraction(c.Request.Context(), inputs[i]); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		accepted++
	}

	if accepted == 0 && firstErr != nil {
		status := http.StatusBadRequest
		if !errors.Is(firstErr, errs.ErrInvalidArgument) {
			status = http.StatusInternalServerError
		}
		response.RespondError(c, status, "interactions_rejected", firstErr)
		return
	}
	response.RespondOK(c, gin.H{
		"ok":       true,
		"accepted": accepted,
		"rejected": len(inputs) - accepted,
	})
}
