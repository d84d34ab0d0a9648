package route

import (
	"derma-detect/backend/api/handler"
	"derma-detect/backend/api/middleware"

	"github.com/gin-gonic/gin"
)

func SetApiRouter(router *gin.Engine) {
	apiRouter := router.Group("/api")
	{
		apiRouter.GET("/status", handler.GetStatus)

		authRouter := apiRouter.Group("/auth")
		{
			authRouter.POST("/register", handler.Register)
			authRouter.POST("/login", handler.Login)
			authRouter.POST("/refresh", handler.RefreshToken)
			authRouter.POST("/logout", middleware.UserAuth(), handler.Logout)
		}

		userRouter := apiRouter.Group("/user", middleware.UserAuth())
		{
			userRouter.GET("/self", handler.GetSelf)
		}

		apiRouter.POST("/upload", middleware.UserAuth(), handler.UploadImage)
		apiRouter.POST("/predict", middleware.UserAuth(), handler.PredictImage)
		apiRouter.GET("/images", middleware.UserAuth(), handler.GetUserImages)

		inferenceRouter := apiRouter.Group("/inference", middleware.UserAuth())
		{
			inferenceRouter.POST("/predict", handler.RelayPredict)
			inferenceRouter.POST("/use-sample", handler.RelayUseSample)
			inferenceRouter.POST("/chat", handler.RelayChat)
			inferenceRouter.POST("/ask-dermatologist", handler.RelayAskDermatologist)
		}
	}
}
