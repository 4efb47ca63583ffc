// Package chat provides follow-up conversations about a completed analysis.
// A Session is an explicit object owned by its caller: one per conversation
// context, created fresh when the context changes, never shared globally.
package chat

import (
	"context"
	"fmt"

	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"google.golang.org/genai"
)

// ContextKind says what the session is grounded in: the original document
// text, or the analysis JSON produced by the pipeline.
type ContextKind string

const (
	ContextDocument ContextKind = "document"
	ContextAnalysis ContextKind = "analysis"
)

// Session is one conversational context. Not safe for concurrent use; a
// new context means a new Session.
type Session struct {
	chat *genai.Chat
}

// NewSession opens a conversation grounded in the given context content.
func NewSession(ctx context.Context, client *gemini.Client, content string, kind ContextKind) (*Session, error) {
	var system string
	switch kind {
	case ContextDocument:
		system = fmt.Sprintf(`You are a helpful AI assistant. You are having a conversation with a user about a specific document they have provided. All of your answers should be based on the following document context. Do not use any outside knowledge unless explicitly asked to.

--- DOCUMENT CONTEXT ---
%s
--- END DOCUMENT CONTEXT ---`, content)
	case ContextAnalysis:
		system = fmt.Sprintf(`You are a helpful AI assistant. You are having a conversation with a user about a set of AI-generated analysis results. All of your answers should be based on the following JSON data. Do not use any outside knowledge. When asked about the data, explain it in a clear, human-readable way.

--- ANALYSIS JSON DATA ---
%s
--- END ANALYSIS JSON DATA ---`, content)
	default:
		return nil, fmt.Errorf("unknown context kind: %q", kind)
	}

	c, err := client.NewChat(ctx, system)
	if err != nil {
		return nil, err
	}
	return &Session{chat: c}, nil
}

// SendStream sends a message and forwards response chunks to fn as they
// arrive. Returning an error from fn stops consumption; the underlying
// request still runs to completion server-side.
func (s *Session) SendStream(ctx context.Context, message string, fn func(chunk string) error) error {
	for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
		if err != nil {
			return fmt.Errorf("chat stream failed: %w", err)
		}
		if text := resp.Text(); text != "" {
			if err := fn(text); err != nil {
				return err
			}
		}
	}
	return nil
}
