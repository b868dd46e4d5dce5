// Package generativeAI wraps the hosted text-generation capability. The
// rest of the codebase treats it as an untrusted oracle: callers validate
// anything structured they ask it to produce.
package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

// TextGenerator is the text-generation capability: system instructions plus
// an ordered transcript in, free text out. Implementations may error on
// transport failures; they make no structured-output guarantees.
type TextGenerator interface {
	Complete(ctx context.Context, systemInstructions string, turns []types.ConversationTurn) (string, error)
}

// Options selects and tunes a concrete provider.
type Options struct {
	Provider    string // "gemini" or "groq"
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewTextGenerator builds the configured provider client. API keys come
// from the environment (GOOGLE_GEMINI_API_KEY / GROQ_API_KEY).
func NewTextGenerator(ctx context.Context, opts Options, logger *slog.Logger) (TextGenerator, error) {
	switch strings.ToLower(opts.Provider) {
	case "gemini":
		return NewGeminiClient(ctx, os.Getenv("GOOGLE_GEMINI_API_KEY"), opts, logger)
	case "groq":
		return NewGroqClient(os.Getenv("GROQ_API_KEY"), opts, logger)
	default:
		return nil, fmt.Errorf("unsupported text-generation provider: %q", opts.Provider)
	}
}
