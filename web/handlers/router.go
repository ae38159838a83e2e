package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rtotrack.dev/rtotrack/core"
)

// NewRouter builds the HTTP engine. Proxy headers are never trusted: the
// check-in gate compares the peer address against the office IPs, so a
// client-supplied X-Forwarded-For must not stand in for it.
func NewRouter(service *core.Service, allowOrigins []string) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies(nil)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "PUT", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       5 * time.Minute,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	Register(r, service)
	return r
}
