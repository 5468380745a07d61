package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oselz/ai-gateway/internal/core/domain"
	"github.com/oselz/ai-gateway/internal/gateway"
	"github.com/oselz/ai-gateway/pkg/schema"
)

// 25 MB, matching common provider upload caps.
const maxAudioBytes = 25 << 20

type TranscriptionHandler struct {
	service gateway.Service
}

func NewTranscriptionHandler(service gateway.Service) *TranscriptionHandler {
	return &TranscriptionHandler{service: service}
}

func (h *TranscriptionHandler) CreateTranscription(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(domain.BadRequestError("Missing 'file' form field"))
		return
	}

	if fileHeader.Size > maxAudioBytes {
		_ = c.Error(domain.BadRequestError("Audio file exceeds the 25MB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(domain.InternalError("Failed to read uploaded file", err))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		_ = c.Error(domain.InternalError("Failed to read uploaded file", err))
		return
	}

	req := &schema.TranscriptionRequest{
		Audio:    audio,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Model:    c.PostForm("model"),
		Language: c.PostForm("language"),
	}

	resp, err := h.service.Transcribe(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
