package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check is one named dependency probed by Health.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health returns a JSON health check response.
// Reports each dependency as connected or error; never exposes credentials or internals.
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		body := gin.H{}
		healthy := true
		for _, chk := range checks {
			status := "connected"
			if chk.Ping == nil || chk.Ping(ctx) != nil {
				status = "error"
				healthy = false
			}
			body[chk.Name] = status
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = healthy
		c.JSON(status, body)
	}
}
