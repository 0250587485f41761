package assistant

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// ErrNotConfigured is returned by a transport without credentials
var ErrNotConfigured = errors.New("assistant API key not configured")

// GeminiTransport opens chats on the Gemini API
type GeminiTransport struct {
	client *genai.Client
	model  string
}

// NewGeminiTransport creates a Gemini client for apiKey
func NewGeminiTransport(ctx context.Context, apiKey, model string) (*GeminiTransport, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiTransport{client: client, model: model}, nil
}

func (t *GeminiTransport) Open(ctx context.Context, systemInstruction string) (Conversation, error) {
	thinkingBudget := int32(0)
	chat, err := t.client.Chats.Create(ctx, t.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: &thinkingBudget},
	}, nil)
	if err != nil {
		return nil, err
	}
	return &geminiConversation{chat: chat}, nil
}

type geminiConversation struct {
	chat *genai.Chat
}

func (c *geminiConversation) SendStream(ctx context.Context, message string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range c.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
			if err != nil {
				yield("", err)
				return
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

// UnavailableTransport fails every Open. It stands in when no API key is
// configured so chat turns end with the apology instead of a server error.
type UnavailableTransport struct{}

func (UnavailableTransport) Open(context.Context, string) (Conversation, error) {
	return nil, ErrNotConfigured
}
