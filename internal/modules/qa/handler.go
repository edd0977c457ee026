package qa

import (
	"github.com/gin-gonic/gin"
	"github.com/sherpa-api/core/internal/modules/collaborator"
	"github.com/sherpa-api/core/internal/pkg/response"
	"go.uber.org/zap"
)

type AskQuestionDTO struct {
	Question  string `json:"question" binding:"required"`
	Context   string `json:"context"`
	PageTitle string `json:"page_title"`
	PageURL   string `json:"page_url"`
}

// Handler answers free-form questions about the page the user is on.
type Handler struct {
	collab collaborator.Client
	logger *zap.Logger
}

func NewHandler(collab collaborator.Client, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		collab: collab,
		logger: logger.Named("QAHandler"),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/questions", h.ask)
}

// POST /v1/questions
func (h *Handler) ask(c *gin.Context) {
	var dto AskQuestionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	answer, err := h.collab.AnswerGeneralQuestion(c.Request.Context(), dto.Question, dto.Context, dto.PageTitle, dto.PageURL)
	if err != nil {
		h.logger.Warn("question answering failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.OK(c, answer)
}
