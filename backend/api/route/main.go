package route

import (
	"derma-detect/backend/api/middleware"
	"derma-detect/backend/common"

	"github.com/gin-gonic/gin"
)

func SetRouter(router *gin.Engine) {
	if *common.EnableGzip {
		router.Use(middleware.GzipDecodeMiddleware())
		router.Use(middleware.GzipEncodeMiddleware())
	}
	SetApiRouter(router)
	SetWebRouter(router)
}
