package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oselz/ai-gateway/internal/core/domain"
	"github.com/oselz/ai-gateway/internal/gateway"
	"github.com/oselz/ai-gateway/internal/server/validator"
	"github.com/oselz/ai-gateway/pkg/schema"
)

type ImageHandler struct {
	service gateway.Service
}

func NewImageHandler(service gateway.Service) *ImageHandler {
	return &ImageHandler{service: service}
}

func (h *ImageHandler) CreateImage(c *gin.Context) {
	var req schema.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(domain.ValidationError(validator.ParseValidationError(err)))
		return
	}

	resp, err := h.service.GenerateImage(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
