package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// UsageReader is the rate-gate read surface for the admin endpoint.
type UsageReader interface {
	Providers() []string
	Usage(ctx context.Context, provider string) (int64, error)
	Quota(provider string) int
	ResetsIn(ctx context.Context, provider string) (time.Duration, error)
}

type UsageHandler struct {
	gate UsageReader
}

func NewUsageHandler(gate UsageReader) *UsageHandler {
	return &UsageHandler{gate: gate}
}

// Handles GET /admin/usage
func (h *UsageHandler) GetUsage(c *gin.Context) {
	ctx := c.Request.Context()

	providers := h.gate.Providers()
	sort.Strings(providers)

	usage := make([]gin.H, 0, len(providers))
	for _, provider := range providers {
		count, err := h.gate.Usage(ctx, provider)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		quota := h.gate.Quota(provider)
		remaining := int64(quota) - count
		if remaining < 0 {
			remaining = 0
		}

		entry := gin.H{
			"provider":  provider,
			"used":      count,
			"quota":     quota,
			"remaining": remaining,
		}

		if ttl, err := h.gate.ResetsIn(ctx, provider); err == nil && ttl > 0 {
			entry["resets_in_seconds"] = int64(ttl.Seconds())
		}

		usage = append(usage, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"usage":     usage,
		"timestamp": time.Now().Unix(),
	})
}
