package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httptransport "github.com/aryanarora07/podlyze/internal/transport/http"
)

type summarizeRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Service) handleSummarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "url is required")
		return
	}

	result, err := s.summary.Summarize(c.Request.Context(), req.URL)
	if err != nil {
		s.logger.ErrorTag("HTTP", "summarize %s: %v", req.URL, err)
		httptransport.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, result, "")
}

// handleProgressLatest serves the single-slot polling contract: the
// progress of the most recently started job, 0 when idle.
func (s *Service) handleProgressLatest(c *gin.Context) {
	snap, err := s.summary.LatestProgress(c.Request.Context())
	if err != nil {
		httptransport.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	progress := 0
	if snap != nil {
		progress = snap.Progress
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (s *Service) handleProgressByID(c *gin.Context) {
	snap, err := s.summary.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		httptransport.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if snap == nil {
		httptransport.RespondError(c, http.StatusNotFound, "unknown job")
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, snap, "")
}

func (s *Service) handleSummaries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	summaries, err := s.summary.Recent(c.Request.Context(), limit)
	if err != nil {
		httptransport.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, summaries, "")
}
