package client

import (
	"context"

	"derma-detect/backend/library/inference"
)

// ChatMode selects which collaborator endpoint the session talks to.
type ChatMode string

const (
	ModeBasic    ChatMode = "basic"
	ModeAdvanced ChatMode = "advanced"
)

// ChatMessage is one entry in the session transcript.
type ChatMessage struct {
	Sender         string
	Text           string
	AdditionalInfo []string
}

const chatErrorFallback = "I'm sorry, I encountered an error processing your request."

// ChatSession holds the transcript and mode of one assistant conversation.
// Not safe for concurrent use.
type ChatSession struct {
	client    *inference.Client
	condition string
	mode      ChatMode
	messages  []ChatMessage
}

// NewChatSession opens a basic-mode session seeded with a greeting. With a
// condition the greeting is requested from the service, falling back to the
// generic one on any failure without surfacing the error. Without a condition
// no request is made and the generic greeting is used directly.
func NewChatSession(ctx context.Context, client *inference.Client, condition string) *ChatSession {
	s := &ChatSession{
		client:    client,
		condition: condition,
		mode:      ModeBasic,
	}
	reply := genericGreeting()
	if condition != "" {
		if seeded, err := client.Chat(ctx, "hello", condition); err == nil {
			reply = seeded
		}
	}
	s.appendAssistant(reply)
	return s
}

func genericGreeting() *inference.ChatReply {
	return &inference.ChatReply{
		Response: "Hello! I'm your dermatology assistant. How can I help you today?",
		AdditionalInfo: []string{
			"You can ask me about skin conditions, treatments, and skincare routines.",
			"Switch to advanced mode for more personalized answers.",
		},
	}
}

func (s *ChatSession) Mode() ChatMode {
	return s.mode
}

// SetMode switches between basic and advanced and notes the switch in the
// transcript. Switching to the current mode is a no-op.
func (s *ChatSession) SetMode(mode ChatMode) {
	if mode == s.mode {
		return
	}
	s.mode = mode
	text := "Switching to basic mode. I'll provide general information about common skin health topics."
	if mode == ModeAdvanced {
		text = "Switching to advanced mode. I'll now provide more personalized responses to your questions."
	}
	s.messages = append(s.messages, ChatMessage{Sender: "assistant", Text: text})
}

// Send submits the user's text to the endpoint of the current mode and
// appends both sides to the transcript. A service failure becomes a fallback
// assistant message; Send itself does not fail.
func (s *ChatSession) Send(ctx context.Context, text string) ChatMessage {
	s.messages = append(s.messages, ChatMessage{Sender: "user", Text: text})

	var reply *inference.ChatReply
	var err error
	if s.mode == ModeAdvanced {
		reply, err = s.client.AskDermatologist(ctx, text, s.condition)
	} else {
		reply, err = s.client.Chat(ctx, text, s.condition)
	}
	if err != nil {
		reply = &inference.ChatReply{
			Response:       chatErrorFallback,
			AdditionalInfo: []string{"Please try again later."},
		}
	}
	return s.appendAssistant(reply)
}

func (s *ChatSession) appendAssistant(reply *inference.ChatReply) ChatMessage {
	msg := ChatMessage{
		Sender:         "assistant",
		Text:           reply.Response,
		AdditionalInfo: reply.AdditionalInfo,
	}
	s.messages = append(s.messages, msg)
	return msg
}

// Messages returns a copy of the transcript in order.
func (s *ChatSession) Messages() []ChatMessage {
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}
