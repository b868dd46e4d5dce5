// Package intent classifies free-text user messages into structured search
// intents. Classification is delegated to the text-generation capability and
// defensively validated: anything the model gets wrong collapses into a
// clarification, never an error surfaced to the user.
package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	generativeAI "github.com/ZyrusAlvez/tourist-app-binan/internal/api/generative_ai"
	"github.com/ZyrusAlvez/tourist-app-binan/internal/types"
)

// historyWindow is how many trailing conversation turns accompany the
// message being classified.
const historyWindow = 4

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Identify classifies the latest user message in the context of the
	// recent conversation. It never returns an error for model failures;
	// those degrade to a low-confidence clarification intent.
	Identify(ctx context.Context, message string, history []types.ConversationTurn) *types.Intent
}

type ServiceImpl struct {
	logger    *slog.Logger
	generator generativeAI.TextGenerator
}

func NewServiceImpl(generator generativeAI.TextGenerator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		generator: generator,
	}
}

func (s *ServiceImpl) Identify(ctx context.Context, message string, history []types.ConversationTurn) *types.Intent {
	ctx, span := otel.Tracer("IntentService").Start(ctx, "Identify")
	defer span.End()

	turns := make([]types.ConversationTurn, 0, historyWindow+1)
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	turns = append(turns, history...)
	turns = append(turns, types.ConversationTurn{Role: types.RoleUser, Content: message, Timestamp: time.Now()})

	raw, err := s.generator.Complete(ctx, classifierSystemPrompt(), turns)
	if err != nil {
		s.logger.WarnContext(ctx, "Intent classification call failed", slog.Any("error", err))
		span.RecordError(err)
		return clarifyFallback()
	}

	parsed, ok := parseIntent(raw)
	if !ok {
		s.logger.WarnContext(ctx, "Intent classification returned unparsable output",
			slog.String("raw", truncate(raw, 300)))
		return clarifyFallback()
	}

	intent := s.validate(ctx, parsed)
	span.SetAttributes(
		attribute.String("intent.type", string(intent.Type)),
		attribute.Bool("intent.nearby", intent.Nearby),
		attribute.Float64("intent.confidence", intent.Confidence),
	)
	span.SetStatus(codes.Ok, "intent classified")
	return intent
}

// validate enforces the invariants the model is only asked to follow: a
// known intent kind and a category list drawn from the fixed vocabulary.
// Any violation downgrades the whole result to a clarification.
func (s *ServiceImpl) validate(ctx context.Context, intent *types.Intent) *types.Intent {
	switch intent.Type {
	case types.IntentSearchPlaces, types.IntentRecommendation, types.IntentChat, types.IntentClarification:
	default:
		s.logger.WarnContext(ctx, "Intent classifier emitted unknown kind", slog.String("kind", string(intent.Type)))
		return clarifyFallback()
	}

	for _, tag := range intent.IncludedTypes {
		if !types.IsSupportedPlaceType(tag) {
			s.logger.WarnContext(ctx, "Intent classifier invented a place type, downgrading to clarification",
				slog.String("tag", tag))
			return clarifyFallback()
		}
	}

	if intent.Nearby && intent.Radius <= 0 {
		intent.Radius = types.DefaultNearbyRadiusMeters
	}
	if intent.Type == types.IntentClarification && intent.ClarificationQuestion == "" {
		intent.ClarificationQuestion = clarificationFallback
	}
	return intent
}

func parseIntent(raw string) (*types.Intent, bool) {
	cleaned := extractJSONObject(raw)
	var intent types.Intent
	if err := json.Unmarshal([]byte(cleaned), &intent); err != nil {
		return nil, false
	}
	return &intent, true
}

// extractJSONObject strips markdown fences and surrounding prose, keeping
// the first top-level {...} block.
func extractJSONObject(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	first := strings.Index(response, "{")
	last := strings.LastIndex(response, "}")
	if first == -1 || last == -1 || last <= first {
		return response
	}
	return strings.TrimSpace(response[first : last+1])
}

func clarifyFallback() *types.Intent {
	return &types.Intent{
		Type:                  types.IntentClarification,
		ClarificationQuestion: clarificationFallback,
		Confidence:            0.1,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
