package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/examgen/examgen/internal/models"
	"github.com/examgen/examgen/internal/repository"
)

// Buffered channel for async logging
var logChannel chan models.RequestLog

// Initializes the request logger and its background batch writer
func InitRequestLogger(repo *repository.RequestLogRepository, bufferSize int, logger *zap.Logger) {
	logChannel = make(chan models.RequestLog, bufferSize)

	go func() {
		batch := make([]models.RequestLog, 0, 100)
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()

		flush := func() {
			if len(batch) == 0 {
				return
			}
			if err := repo.CreateBatch(context.Background(), batch); err != nil {
				logger.Error("failed to insert request logs", zap.Error(err), zap.Int("batch_size", len(batch)))
			}
			batch = make([]models.RequestLog, 0, 100)
		}

		for {
			select {
			case entry := <-logChannel:
				batch = append(batch, entry)
				if len(batch) >= 100 {
					flush()
				}
			case <-ticker.C:
				flush()
			}
		}
	}()
}

// Queues one log entry per request for batch insertion
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if logChannel == nil {
			return
		}

		entry := models.RequestLog{
			Timestamp:      start,
			RequestID:      c.GetString("request_id"),
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			StatusCode:     c.Writer.Status(),
			ResponseTimeMs: int(time.Since(start).Milliseconds()),
			IPAddress:      c.ClientIP(),
			UserAgent:      c.Request.UserAgent(),
		}

		select {
		case logChannel <- entry:
		default:
			// Channel full, drop the entry rather than block the response
		}
	}
}
