package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(&Config{BaseURL: server.URL}), server
}

func TestPredictSendsMultipartFile(t *testing.T) {
	var gotFilename string
	var gotContent []byte
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotContent, err = io.ReadAll(file)
		require.NoError(t, err)

		_ = json.NewEncoder(w).Encode(Prediction{
			ClassName:   "Melanocytic nevus",
			Description: "A common benign mole.",
			Confidence:  0.92,
		})
	}))
	defer server.Close()

	prediction, err := client.Predict(context.Background(), "lesion.jpg", bytes.NewReader([]byte("jpeg-bytes")))
	require.NoError(t, err)
	assert.Equal(t, "lesion.jpg", gotFilename)
	assert.Equal(t, []byte("jpeg-bytes"), gotContent)
	assert.Equal(t, "Melanocytic nevus", prediction.ClassName)
	assert.Equal(t, 0.92, prediction.Confidence)
}

func TestChatUsesMessageField(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "what causes eczema?", r.PostForm.Get("message"))
		assert.Equal(t, "eczema", r.PostForm.Get("condition"))

		_ = json.NewEncoder(w).Encode(ChatReply{
			Response:       "Eczema has several common triggers.",
			AdditionalInfo: []string{"Keep skin moisturized."},
		})
	}))
	defer server.Close()

	reply, err := client.Chat(context.Background(), "what causes eczema?", "eczema")
	require.NoError(t, err)
	assert.Equal(t, "Eczema has several common triggers.", reply.Response)
	assert.Equal(t, []string{"Keep skin moisturized."}, reply.AdditionalInfo)
}

func TestAskDermatologistUsesQuestionField(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ask-dermatologist", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "is this mole dangerous?", r.PostForm.Get("question"))
		assert.Empty(t, r.PostForm.Get("condition"))

		_ = json.NewEncoder(w).Encode(ChatReply{Response: "Please consult a dermatologist in person."})
	}))
	defer server.Close()

	reply, err := client.AskDermatologist(context.Background(), "is this mole dangerous?", "")
	require.NoError(t, err)
	assert.Equal(t, "Please consult a dermatologist in person.", reply.Response)
}

func TestNonOKStatusIsAnError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := client.UseSample(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inference service returned 500")
	assert.Contains(t, err.Error(), "model not loaded")
}
