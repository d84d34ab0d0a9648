package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"derma-detect/backend/library/inference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		require.NoError(t, r.ParseForm())
		var text string
		switch r.URL.Path {
		case "/chat":
			text = r.PostForm.Get("message")
		case "/ask-dermatologist":
			text = r.PostForm.Get("question")
		default:
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(inference.ChatReply{
			Response:       "You said: " + text,
			AdditionalInfo: []string{"General information only."},
		})
	}))
	return server, &paths
}

func TestNewChatSessionWithConditionSeedsGreeting(t *testing.T) {
	server, paths := chatServer(t)
	defer server.Close()

	session := NewChatSession(context.Background(), inference.NewClient(&inference.Config{BaseURL: server.URL}), "psoriasis")
	messages := session.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "assistant", messages[0].Sender)
	assert.Equal(t, "You said: hello", messages[0].Text)
	assert.Equal(t, []string{"/chat"}, *paths)
	assert.Equal(t, ModeBasic, session.Mode())
}

func TestNewChatSessionWithoutConditionSkipsNetworkCall(t *testing.T) {
	server, paths := chatServer(t)
	defer server.Close()

	session := NewChatSession(context.Background(), inference.NewClient(&inference.Config{BaseURL: server.URL}), "")
	messages := session.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Hello! I'm your dermatology assistant. How can I help you today?", messages[0].Text)
	assert.NotEmpty(t, messages[0].AdditionalInfo)
	assert.Empty(t, *paths)
}

func TestNewChatSessionFallsBackWhenServiceIsDown(t *testing.T) {
	server, _ := chatServer(t)
	server.Close()

	session := NewChatSession(context.Background(), inference.NewClient(&inference.Config{BaseURL: server.URL}), "psoriasis")
	messages := session.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Hello! I'm your dermatology assistant. How can I help you today?", messages[0].Text)
	assert.NotEmpty(t, messages[0].AdditionalInfo)
}

func TestSendRoutesByMode(t *testing.T) {
	server, paths := chatServer(t)
	defer server.Close()

	session := NewChatSession(context.Background(), inference.NewClient(&inference.Config{BaseURL: server.URL}), "acne")

	reply := session.Send(context.Background(), "what helps?")
	assert.Equal(t, "You said: what helps?", reply.Text)

	session.SetMode(ModeAdvanced)
	reply = session.Send(context.Background(), "and for my case?")
	assert.Equal(t, "You said: and for my case?", reply.Text)

	// Greeting and first question over /chat, second question over
	// /ask-dermatologist.
	assert.Equal(t, []string{"/chat", "/chat", "/ask-dermatologist"}, *paths)
}

func TestSetModeNotesTheSwitch(t *testing.T) {
	server, _ := chatServer(t)
	defer server.Close()

	session := NewChatSession(context.Background(), inference.NewClient(&inference.Config{BaseURL: server.URL}), "")

	session.SetMode(ModeAdvanced)
	messages := session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "Switching to advanced mode. I'll now provide more personalized responses to your questions.", messages[1].Text)

	// Switching to the current mode adds nothing.
	session.SetMode(ModeAdvanced)
	assert.Len(t, session.Messages(), 2)

	session.SetMode(ModeBasic)
	messages = session.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "Switching to basic mode. I'll provide general information about common skin health topics.", messages[2].Text)
}

func TestSendFallsBackOnServiceError(t *testing.T) {
	server, _ := chatServer(t)

	session := NewChatSession(context.Background(), inference.NewClient(&inference.Config{BaseURL: server.URL}), "")
	server.Close()

	reply := session.Send(context.Background(), "hello?")
	assert.Equal(t, "I'm sorry, I encountered an error processing your request.", reply.Text)
	assert.Equal(t, []string{"Please try again later."}, reply.AdditionalInfo)

	messages := session.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "user", messages[1].Sender)
	assert.Equal(t, "hello?", messages[1].Text)
}
