package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pescuma/thanks/lib/storages"
)

// maintenance answers every request with 503 while the maintenance flag is set.
func (s *server) maintenance(c *gin.Context) {
	cfg, err := s.storage.LoadConfig()
	if err != nil {
		sendError(c, err)
		c.Abort()
		return
	}

	if cfg[storages.ConfigMaintenance] == "true" {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"maintenance": true})
		return
	}

	c.Next()
}
