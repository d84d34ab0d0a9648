package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"derma-detect/backend/api/handler"
	"derma-detect/backend/api/middleware"
	"derma-detect/backend/api/route"
	"derma-detect/backend/common"
	"derma-detect/backend/library/inference"
	"derma-detect/backend/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
)

func main() {
	flag.Parse()
	if *common.PrintVersion {
		fmt.Println(common.Version)
		os.Exit(0)
	}

	if err := common.InitConfig(); err != nil {
		common.FatalLog(err)
	}
	common.SetupGinLog()
	common.SysLog("derma-detect " + common.Version + " started")

	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := common.InitRedisClient(); err != nil {
		common.FatalLog(err)
	}
	if err := model.InitDB(); err != nil {
		common.FatalLog(err)
	}

	setupInferenceClient()
	setupGracefulShutdown()

	server := gin.Default()
	server.Use(middleware.CORS())
	server.Use(sessions.Sessions("session", sessionStore()))

	route.SetRouter(server)
	server.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"success": false, "message": "not found"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(*common.Port)
	}
	if err := server.Run(":" + port); err != nil {
		common.FatalLog(err)
	}
}

func setupInferenceClient() {
	switch {
	case common.InferenceBaseURL != "":
		handler.InferenceClient = inference.NewClient(&inference.Config{BaseURL: common.InferenceBaseURL})
	case *common.InferenceConfig != "":
		cfg, err := inference.LoadConfig(*common.InferenceConfig)
		if err != nil {
			common.FatalLog(err)
		}
		handler.InferenceClient = inference.NewClient(cfg)
	default:
		common.SysLog("no inference service configured, relay endpoints are disabled")
	}
}

func sessionStore() sessions.Store {
	if common.RedisEnabled {
		opt := common.ParseRedisOption()
		store, err := redis.NewStore(10, "tcp", opt.Addr, opt.Username, opt.Password, []byte(common.SessionSecret))
		if err == nil {
			return store
		}
		common.SysError("failed to connect to Redis session store: " + err.Error())
	}
	return cookie.NewStore([]byte(common.SessionSecret))
}

func setupGracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		common.SysLog("shutting down")
		if err := model.CloseDB(); err != nil {
			common.SysError("failed to close database: " + err.Error())
		}
		os.Exit(0)
	}()
}
