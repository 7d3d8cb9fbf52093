// Package reportserver exposes the stage report artifacts over HTTP so
// the operator can review a run before kicking off the next stage.
package reportserver

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"menuforge/internal/report"
)

// NewRouter builds a read-only router over the report directory.
func NewRouter(reportDir string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	reports := r.Group("/reports")
	{
		reports.GET("", func(c *gin.Context) {
			names, err := report.List(reportDir)
			if err != nil {
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			if names == nil {
				names = []string{}
			}
			c.JSON(200, gin.H{"reports": names})
		})

		reports.GET("/:name", func(c *gin.Context) {
			name := c.Param("name")
			// The directory holds nothing but flat json artifacts.
			if name != filepath.Base(name) || filepath.Ext(name) != ".json" {
				c.JSON(400, gin.H{"error": "invalid report name"})
				return
			}

			path := filepath.Join(reportDir, name)
			if _, err := os.Stat(path); err != nil {
				c.JSON(404, gin.H{"error": "report not found"})
				return
			}
			c.File(path)
		})
	}

	return r
}

// Serve blocks on the gin listener.
func Serve(reportDir, addr string) error {
	r := NewRouter(reportDir)
	return r.Run(addr)
}
