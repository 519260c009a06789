package utils

import (
	"context"
	"net/http"
	"time"

	"servicecenter/database"

	"github.com/gin-gonic/gin"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthHandler pings Mongo and Redis and reports their status.
func HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{CheckedAt: time.Now()}
	if database.MongoClient != nil && database.MongoClient.Ping(ctx, nil) == nil {
		status.Mongo = true
	}
	if CacheClient != nil && CacheClient.Ping(ctx).Err() == nil {
		status.Redis = true
	}

	code := http.StatusOK
	if !status.Mongo || !status.Redis {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
