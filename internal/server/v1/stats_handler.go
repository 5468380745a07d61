package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oselz/ai-gateway/internal/gateway"
)

type StatsHandler struct {
	service gateway.Service
}

func NewStatsHandler(service gateway.Service) *StatsHandler {
	return &StatsHandler{service: service}
}

type providerStats struct {
	Provider     string `json:"provider"`
	Name         string `json:"name"`
	RequestCount int64  `json:"request_count"`
}

// GetStats reports per-provider routing counts since startup or the last
// reset. Only providers that have been selected at least once appear.
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats := h.service.Statistics()

	data := make(map[string]providerStats, len(stats))
	for id, s := range stats {
		data[id] = providerStats{
			Provider:     id,
			Name:         s.Descriptor.Name,
			RequestCount: s.RequestCount,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "stats",
		"data":   data,
	})
}

func (h *StatsHandler) ResetStats(c *gin.Context) {
	h.service.ResetStatistics()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
