package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"derma-detect/backend/library/inference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInference serves the classifier endpoints with a fixed prediction.
func fakeInference(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		switch r.URL.Path {
		case "/predict", "/use-sample":
			_ = json.NewEncoder(w).Encode(inference.Prediction{
				ClassName:  "Benign keratosis",
				Confidence: 0.88,
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

// fakeBackend serves the record endpoints; failUpload switches the upload to
// a 500.
func fakeBackend(t *testing.T, failUpload bool, predictions *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/upload":
			if failUpload {
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Upload failed"})
				return
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message": "Image uploaded successfully",
				"image":   map[string]any{"id": 11, "filename": "lesion.png", "url": "/uploads/x.png"},
			})
		case "/api/predict":
			atomic.AddInt32(predictions, 1)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
		default:
			http.NotFound(w, r)
		}
	}))
}

func newUploader(inferenceURL string, backendURL string, states *[]UploadState) *Uploader {
	return &Uploader{
		Inference: inference.NewClient(&inference.Config{BaseURL: inferenceURL}),
		Backend:   NewBackendClient(backendURL),
		OnState: func(s UploadState) {
			*states = append(*states, s)
		},
	}
}

func TestUploadHappyPath(t *testing.T) {
	var inferenceCalls, predictions int32
	inf := fakeInference(t, &inferenceCalls)
	defer inf.Close()
	backend := fakeBackend(t, false, &predictions)
	defer backend.Close()

	var states []UploadState
	u := newUploader(inf.URL, backend.URL, &states)

	result, err := u.Upload(context.Background(), "lesion.png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	require.NotNil(t, result.Prediction)
	assert.Equal(t, "Benign keratosis", result.Prediction.ClassName)
	require.NotNil(t, result.Image)
	assert.Equal(t, int64(11), result.Image.ID)
	assert.NoError(t, result.PersistErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&predictions))

	assert.Equal(t, []UploadState{
		StateValidating,
		StateUploading,
		StateAwaitingResult,
		StatePersisting,
		StateReady,
	}, states)
}

func TestUploadRejectsExtensionBeforeAnyNetworkCall(t *testing.T) {
	var inferenceCalls, predictions int32
	inf := fakeInference(t, &inferenceCalls)
	defer inf.Close()
	backend := fakeBackend(t, false, &predictions)
	defer backend.Close()

	var states []UploadState
	u := newUploader(inf.URL, backend.URL, &states)

	_, err := u.Upload(context.Background(), "scan.gif", bytes.NewReader([]byte("gif-bytes")))
	require.ErrorIs(t, err, ErrUnsupportedFile)
	assert.Equal(t, "Please upload a JPG, JPEG, or PNG file", err.Error())
	assert.Equal(t, int32(0), atomic.LoadInt32(&inferenceCalls))
	assert.Equal(t, []UploadState{StateValidating, StateError}, states)
}

func TestUploadKeepsPredictionWhenPersistenceFails(t *testing.T) {
	var inferenceCalls, predictions int32
	inf := fakeInference(t, &inferenceCalls)
	defer inf.Close()
	backend := fakeBackend(t, true, &predictions)
	defer backend.Close()

	var states []UploadState
	u := newUploader(inf.URL, backend.URL, &states)

	result, err := u.Upload(context.Background(), "lesion.jpg", bytes.NewReader([]byte("jpeg-bytes")))
	require.NoError(t, err)
	require.NotNil(t, result.Prediction)
	assert.Equal(t, "Benign keratosis", result.Prediction.ClassName)
	assert.Nil(t, result.Image)
	assert.Error(t, result.PersistErr)
	assert.Equal(t, int32(0), atomic.LoadInt32(&predictions))
	assert.Equal(t, UploadState(StateReady), states[len(states)-1])
}

func TestUseSample(t *testing.T) {
	var inferenceCalls int32
	inf := fakeInference(t, &inferenceCalls)
	defer inf.Close()

	var states []UploadState
	u := newUploader(inf.URL, "http://unused", &states)

	result, err := u.UseSample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Benign keratosis", result.Prediction.ClassName)
	assert.Nil(t, result.Image)
}
