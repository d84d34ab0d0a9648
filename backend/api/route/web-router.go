package route

import (
	"net/http"

	"derma-detect/backend/common"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// SetWebRouter serves stored uploads and a minimal root page. Uploaded files
// are public by URL only; listings are disabled.
func SetWebRouter(router *gin.Engine) {
	router.Use(static.Serve("/uploads", static.LocalFile(common.UploadPath, false)))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "derma-detect "+common.Version)
	})
}
