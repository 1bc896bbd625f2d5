package api

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	httptransport "github.com/aryanarora07/podlyze/internal/transport/http"
)

type chatRequest struct {
	JobID   string `json:"job_id"`
	Summary string `json:"summary"`
	Message string `json:"message" binding:"required"`
}

// handleChat streams the answer as server-sent events: a start frame,
// one content frame per fragment in generation order, then a done
// frame. If the upstream stream dies mid-answer the connection is
// closed without a done frame so the client can tell the answer is
// incomplete.
func (s *Service) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "message is required")
		return
	}

	deltas, err := s.chat.Stream(c.Request.Context(), req.JobID, req.Summary, req.Message)
	if err != nil {
		s.logger.ErrorTag("HTTP", "chat: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	writeFrame(c, gin.H{"start": true})
	for delta := range deltas {
		if delta.Err != nil {
			s.logger.ErrorTag("HTTP", "chat stream aborted: %v", delta.Err)
			return
		}
		writeFrame(c, gin.H{"content": delta.Content})
	}
	writeFrame(c, gin.H{"done": true})
}

func writeFrame(c *gin.Context, payload gin.H) {
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", encoded)
	c.Writer.Flush()
}

type translateRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"targetLanguage" binding:"required"`
}

func (s *Service) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "text and targetLanguage are required")
		return
	}

	translated, err := s.translate.Translate(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		s.logger.ErrorTag("HTTP", "translate: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"translation": translated}, "")
}
