package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"derma-detect/backend/service"

	"github.com/gin-gonic/gin"
)

// UploadImage handles POST /api/upload: one multipart "file" field, validated
// and stored on disk with a database record owned by the caller.
func UploadImage(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image uploaded"})
		return
	}
	if err := service.ValidateImageUpload(header); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	image, err := service.SaveUploadedImage(header, c.GetInt64("user_id"), requestBaseURL(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Upload failed",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Image uploaded successfully",
		"image": gin.H{
			"id":         image.ID,
			"filename":   image.Filename,
			"uploadDate": image.UploadDate,
			"url":        image.URL,
		},
	})
}

// requestBaseURL reconstructs the externally visible scheme://host of the
// request so stored URLs resolve for the client that uploaded them.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

// PredictRequestPayload carries the image id and an optional prediction
// payload produced by the external classifier. Without a payload a
// placeholder result is recorded.
type PredictRequestPayload struct {
	ImageID    json.Number     `json:"imageId"`
	Prediction json.RawMessage `json:"prediction"`
}

func PredictImage(c *gin.Context) {
	var payload PredictRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request: " + err.Error()})
		return
	}
	if payload.ImageID.String() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image ID is required"})
		return
	}
	id, err := payload.ImageID.Int64()
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image ID is required"})
		return
	}

	var prediction any
	if len(payload.Prediction) > 0 && string(payload.Prediction) != "null" {
		prediction = payload.Prediction
	}

	stored, err := service.RecordPrediction(id, prediction)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error processing image",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stored,
	})
}

// GetUserImages handles GET /api/images: the caller's records newest first.
// The optional limit query parameter bounds the response; the default stays
// unbounded for compatibility.
func GetUserImages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	views, err := service.ListUserImages(c.GetInt64("user_id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching images",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(views),
		"data":    views,
	})
}
