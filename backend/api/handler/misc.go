package handler

import (
	"time"

	"derma-detect/backend/common"

	"github.com/gin-gonic/gin"
)

var StartTime = time.Now()

func GetStatus(c *gin.Context) {
	common.RespSuccess(c, gin.H{
		"version":    common.Version,
		"start_time": StartTime.Unix(),
	})
}
