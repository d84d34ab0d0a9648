package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"derma-detect/backend/library/inference"
)

// UploadState is the uploader's observable phase, reported through OnState as
// the flow progresses.
type UploadState string

const (
	StateIdle           UploadState = "idle"
	StateValidating     UploadState = "validating"
	StateUploading      UploadState = "uploading-for-inference"
	StateAwaitingResult UploadState = "awaiting-inference-result"
	StatePersisting     UploadState = "persisting-to-backend"
	StateReady          UploadState = "ready"
	StateError          UploadState = "error"
)

// ErrUnsupportedFile rejects files before any network call is made.
var ErrUnsupportedFile = errors.New("Please upload a JPG, JPEG, or PNG file")

// UploadResult is the outcome of one upload flow. PersistErr is set when the
// record service rejected the image while the prediction itself succeeded;
// the prediction stays usable.
type UploadResult struct {
	Prediction *inference.Prediction
	Image      *ImageInfo
	PersistErr error
}

// Uploader runs the full flow: validate, classify via the inference service,
// then persist the image and its prediction to the record service. OnState is
// optional.
type Uploader struct {
	Inference *inference.Client
	Backend   *BackendClient
	OnState   func(UploadState)
}

func (u *Uploader) setState(s UploadState) {
	if u.OnState != nil {
		u.OnState(s)
	}
}

// Upload classifies and stores one image. A failure before the prediction is
// returned as an error; a persistence failure after a successful prediction
// is reported through UploadResult.PersistErr instead.
func (u *Uploader) Upload(ctx context.Context, filename string, image io.Reader) (*UploadResult, error) {
	u.setState(StateValidating)
	if !allowedExtension(filename) {
		u.setState(StateError)
		return nil, ErrUnsupportedFile
	}

	// Buffer once so the same bytes feed both services.
	data, err := io.ReadAll(image)
	if err != nil {
		u.setState(StateError)
		return nil, err
	}

	u.setState(StateUploading)
	prediction, err := u.Inference.Predict(ctx, filename, bytes.NewReader(data))
	if err != nil {
		u.setState(StateError)
		return nil, err
	}
	u.setState(StateAwaitingResult)

	result := &UploadResult{Prediction: prediction}

	u.setState(StatePersisting)
	stored, err := u.Backend.UploadImage(ctx, filename, bytes.NewReader(data))
	if err != nil {
		result.PersistErr = err
		u.setState(StateReady)
		return result, nil
	}
	result.Image = stored

	if err := u.Backend.RecordPrediction(ctx, stored.ID, prediction); err != nil {
		result.PersistErr = err
	}
	u.setState(StateReady)
	return result, nil
}

// UseSample runs the flow with the service's canned sample; nothing is
// persisted.
func (u *Uploader) UseSample(ctx context.Context) (*UploadResult, error) {
	u.setState(StateAwaitingResult)
	prediction, err := u.Inference.UseSample(ctx)
	if err != nil {
		u.setState(StateError)
		return nil, err
	}
	u.setState(StateReady)
	return &UploadResult{Prediction: prediction}, nil
}

func allowedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
