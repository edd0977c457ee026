package interpret

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sherpa-api/core/internal/modules/collaborator"
	"github.com/sherpa-api/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sessions/:id/interpret", h.interpret)
}

// GET /v1/sessions/:id/interpret
//
// Text commands arrive as ?mode=text&text=...; voice commands as ?mode=voice
// with a multipart "audio" file. An optional "hint" form or query value
// biases the interpretation.
func (h *Handler) interpret(c *gin.Context) {
	sessionID := c.Param("id")
	mode := c.DefaultQuery("mode", "text")

	input := collaborator.Input{
		Text: c.Query("text"),
		Hint: c.Query("hint"),
	}
	if v := c.PostForm("hint"); v != "" {
		input.Hint = v
	}
	if v := c.PostForm("text"); v != "" {
		input.Text = v
	}

	if mode == "voice" {
		file, err := c.FormFile("audio")
		if err == nil {
			opened, err := file.Open()
			if err != nil {
				response.InternalError(c, err)
				return
			}
			defer opened.Close()
			audio, err := io.ReadAll(opened)
			if err != nil {
				response.InternalError(c, err)
				return
			}
			input.Audio = audio
		}
	}

	result, err := h.svc.Interpret(c.Request.Context(), sessionID, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			response.NotFoundMsg(c, err.Error())
		case errors.Is(err, ErrInvalidInput):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, result)
}
