package summary

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sherpa-api/core/internal/modules/collaborator"
	"github.com/sherpa-api/core/internal/pkg/response"
)

type SubmitSummaryDTO struct {
	SessionID string `json:"session_id" binding:"required"`
	PageURL   string `json:"page_url" binding:"required"`
	PageTitle string `json:"page_title" binding:"required"`
	Context   string `json:"context"`
}

type transcriptResponse struct {
	Transcript   string                      `json:"transcript"`
	Error        string                      `json:"error,omitempty"`
	PlaybackTime []collaborator.PlaybackTime `json:"playback_time,omitempty"`
}

type cacheStatsResponse struct {
	TotalEntries int     `json:"total_entries"`
	TotalSizeMB  float64 `json:"total_size_mb"`
}

type Handler struct{ pipeline *Pipeline }

func NewHandler(pipeline *Pipeline) *Handler { return &Handler{pipeline: pipeline} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/immersive-summary", h.submit)
	rg.GET("/immersive-summary/:jobID", h.audio)
	rg.GET("/immersive-summary/:jobID/transcript", h.transcript)
	rg.POST("/immersive-summary/:jobID/interact", h.interact)
	rg.GET("/cache/stats", h.cacheStats)
}

// POST /v1/immersive-summary
func (h *Handler) submit(c *gin.Context) {
	var dto SubmitSummaryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	jobID, err := h.pipeline.Submit(dto.SessionID, dto.PageURL, dto.PageTitle, dto.Context)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"job_id": jobID})
}

// GET /v1/immersive-summary/:jobID
//
// Serves the finished summary audio. Polling clients treat 404 as "not
// ready yet".
func (h *Handler) audio(c *gin.Context) {
	jobID := c.Param("jobID")
	audio, err := h.pipeline.GetAudio(jobID)
	if err != nil {
		h.notFoundOrFailed(c, jobID)
		return
	}
	c.Data(http.StatusOK, "audio/wav", audio)
}

// GET /v1/immersive-summary/:jobID/transcript
func (h *Handler) transcript(c *gin.Context) {
	jobID := c.Param("jobID")
	transcript, err := h.pipeline.GetTranscript(jobID)
	if err != nil {
		if job, ok := h.pipeline.Job(jobID); ok && job.Status == JobStatusFailed {
			response.OK(c, transcriptResponse{Error: job.Error})
			return
		}
		response.NotFoundMsg(c, "transcript not found")
		return
	}
	response.OK(c, transcriptResponse{
		Transcript:   transcript.Transcript,
		PlaybackTime: transcript.PlaybackTimes,
	})
}

// POST /v1/immersive-summary/:jobID/interact
//
// Takes a multipart "audio" question, answers it against the summary
// transcript, and streams back spoken answer audio. The answer text and the
// transcribed question ride in response headers so the client can show them
// while the audio plays.
func (h *Handler) interact(c *gin.Context) {
	jobID := c.Param("jobID")

	file, err := c.FormFile("audio")
	if err != nil {
		response.BadRequest(c, "audio file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer opened.Close()
	questionAudio, err := io.ReadAll(opened)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	currentPosition := 0.0
	if v := c.PostForm("current_position"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			currentPosition = parsed
		}
	}

	result, err := h.pipeline.Interact(c.Request.Context(), jobID, questionAudio, currentPosition)
	if err != nil {
		h.notFoundOrFailed(c, jobID)
		return
	}

	c.Header("X-Transcribed-Question", sanitizeHeaderValue(result.TranscribedQuestion))
	c.Header("X-Answer-Text", sanitizeHeaderValue(result.AnswerText))
	c.Data(http.StatusOK, "audio/wav", result.Audio)
}

// GET /v1/cache/stats
func (h *Handler) cacheStats(c *gin.Context) {
	stats := h.pipeline.CacheStats()
	sizeMB := float64(stats.TotalBytes) / (1024 * 1024)
	response.OK(c, cacheStatsResponse{
		TotalEntries: stats.Entries,
		TotalSizeMB:  math.Round(sizeMB*100) / 100,
	})
}

func (h *Handler) notFoundOrFailed(c *gin.Context, jobID string) {
	if job, ok := h.pipeline.Job(jobID); ok && job.Status == JobStatusFailed {
		response.NotFoundMsg(c, fmt.Sprintf("summary job failed: %s", job.Error))
		return
	}
	response.NotFoundMsg(c, "summary not found")
}

// sanitizeHeaderValue strips characters that are not valid in an HTTP
// header value, since answers can contain newlines.
func sanitizeHeaderValue(v string) string {
	out := make([]rune, 0, len(v))
	for _, r := range v {
		if r == '\n' || r == '\r' {
			out = append(out, ' ')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
