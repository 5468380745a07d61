package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oselz/ai-gateway/internal/catalog"
	"github.com/oselz/ai-gateway/internal/gateway"
)

type ProviderHandler struct {
	service gateway.Service
}

func NewProviderHandler(service gateway.Service) *ProviderHandler {
	return &ProviderHandler{service: service}
}

type providerInfo struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Speed        catalog.Speed `json:"speed"`
	CostPerToken float64       `json:"cost_per_token"`
	Capabilities capabilities  `json:"capabilities"`
}

type capabilities struct {
	Streaming       bool `json:"streaming"`
	FunctionCalling bool `json:"function_calling"`
	Vision          bool `json:"vision"`
	MaxContext      int  `json:"max_context"`
}

// ListProviders returns the providers currently available, in catalog
// order. A provider appears here if and only if its credential is set.
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	available := h.service.Providers()

	data := make([]providerInfo, 0, len(available))
	for _, d := range available {
		data = append(data, providerInfo{
			ID:           d.ID,
			Name:         d.Name,
			Speed:        d.Speed,
			CostPerToken: d.CostPerToken,
			Capabilities: capabilities{
				Streaming:       d.Capabilities.Streaming,
				FunctionCalling: d.Capabilities.FunctionCalling,
				Vision:          d.Capabilities.Vision,
				MaxContext:      d.Capabilities.MaxContext,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   data,
	})
}
