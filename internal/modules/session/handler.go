package session

import (
	"github.com/gin-gonic/gin"
	"github.com/sherpa-api/core/internal/pkg/response"
)

type CreateSessionDTO struct {
	URL        string     `json:"url" binding:"required"`
	Locale     string     `json:"locale" binding:"required"`
	Voice      string     `json:"voice"`
	SectionMap SectionMap `json:"section_map" binding:"required"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	ExpiresIn int    `json:"expires_in"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.create)
}

// POST /v1/sessions
func (h *Handler) create(c *gin.Context) {
	var dto CreateSessionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess := h.svc.Create(CreateInput{
		URL:        dto.URL,
		Locale:     dto.Locale,
		Voice:      dto.Voice,
		SectionMap: dto.SectionMap,
	})
	response.OK(c, createSessionResponse{
		SessionID: sess.ID,
		ExpiresIn: h.svc.TTLSeconds(),
	})
}
