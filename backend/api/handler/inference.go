package handler

import (
	"net/http"

	"derma-detect/backend/library/inference"

	"github.com/gin-gonic/gin"
)

// InferenceClient is configured at startup. When nil the relay endpoints
// report the service as unavailable instead of failing mid-request.
var InferenceClient *inference.Client

func relayUnavailable(c *gin.Context) bool {
	if InferenceClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "inference service is not configured",
		})
		return true
	}
	return false
}

func relayError(c *gin.Context, err error) {
	c.JSON(http.StatusBadGateway, gin.H{
		"success": false,
		"message": err.Error(),
	})
}

// RelayPredict forwards the uploaded file to the classifier and returns its
// prediction unchanged.
func RelayPredict(c *gin.Context) {
	if relayUnavailable(c) {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image uploaded"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unable to read uploaded file"})
		return
	}
	defer file.Close()

	prediction, err := InferenceClient.Predict(c.Request.Context(), header.Filename, file)
	if err != nil {
		relayError(c, err)
		return
	}
	c.JSON(http.StatusOK, prediction)
}

func RelayUseSample(c *gin.Context) {
	if relayUnavailable(c) {
		return
	}
	prediction, err := InferenceClient.UseSample(c.Request.Context())
	if err != nil {
		relayError(c, err)
		return
	}
	c.JSON(http.StatusOK, prediction)
}

func RelayChat(c *gin.Context) {
	if relayUnavailable(c) {
		return
	}
	message := c.PostForm("message")
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "message is required"})
		return
	}
	reply, err := InferenceClient.Chat(c.Request.Context(), message, c.PostForm("condition"))
	if err != nil {
		relayError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func RelayAskDermatologist(c *gin.Context) {
	if relayUnavailable(c) {
		return
	}
	question := c.PostForm("question")
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "question is required"})
		return
	}
	reply, err := InferenceClient.AskDermatologist(c.Request.Context(), question, c.PostForm("condition"))
	if err != nil {
		relayError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
