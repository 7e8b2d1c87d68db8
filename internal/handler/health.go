package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "tracker-service"

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
		"time":    time.Now().Unix(),
	})
}

// Readiness: ready только после загрузки реестра шаблонов.
type Readiness struct {
	Templates func() int
}

func (r Readiness) Ready(c *gin.Context) {
	if r.Templates == nil || r.Templates() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "templates": r.Templates()})
}
