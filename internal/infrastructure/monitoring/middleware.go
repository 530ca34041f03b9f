package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// Route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())
		if respSize < 0 {
			respSize = 0
		}

		metrics.RecordHTTPRequest(method, path, status, time.Since(start), respSize)
	}
}

// Timer measures a content store call
type Timer struct {
	start     time.Time
	metrics   *Metrics
	store     string
	operation string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, store, operation string) *Timer {
	return &Timer{
		start:     time.Now(),
		metrics:   metrics,
		store:     store,
		operation: operation,
	}
}

// Stop stops the timer and records the duration
func (t *Timer) Stop(status string) {
	if t == nil || t.metrics == nil {
		return
	}
	t.metrics.RecordStoreCall(t.store, t.operation, status, time.Since(t.start))
}
