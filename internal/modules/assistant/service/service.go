package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	assistantDto "github.com/rightsvoice/backend/internal/modules/assistant/dto"
	"github.com/rightsvoice/backend/internal/modules/assistant/provider"
	"github.com/rightsvoice/backend/pkg/apperror"
	"github.com/rightsvoice/backend/pkg/ratelimiter"
)

const systemPrompt = `You are a rights-education assistant for a civic advocacy platform.
Answer the user's question about human rights, civil liberties, and how to
document or report rights violations. Be factual and cite the relevant
international instruments (UDHR, ICCPR, ICESCR) where they apply.
You are not a lawyer and must say so when the question asks for legal advice
about a specific case. Keep answers under 400 words.

Question: %s`

type AssistantService interface {
	Ask(ctx context.Context, userID uuid.UUID, req assistantDto.AskRequest) (*assistantDto.AskResponse, error)
}

type assistantService struct {
	provider    provider.LLMProvider
	redisClient *redis.Client
}

func NewAssistantService(llmProvider provider.LLMProvider, redisClient *redis.Client) AssistantService {
	return &assistantService{
		provider:    llmProvider,
		redisClient: redisClient,
	}
}

func (s *assistantService) Ask(ctx context.Context, userID uuid.UUID, req assistantDto.AskRequest) (*assistantDto.AskResponse, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: assistant is not configured", apperror.ErrInternal)
	}

	// Model calls are expensive, one question per user per cooldown window
	limit := ratelimiter.GetDurationFromEnv("RATE_LIMIT_ASSISTANT", 10*time.Second)
	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, "assistant", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, "assistant")
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("please wait %.0f seconds before asking again", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	answer, err := s.provider.GenerateText(ctx, fmt.Sprintf(systemPrompt, req.Question))
	if err != nil {
		_ = ratelimiter.ClearRateLimit(context.Background(), s.redisClient, userID, "assistant")
		return nil, fmt.Errorf("%w: assistant request failed: %v", apperror.ErrUpstream, err)
	}

	return &assistantDto.AskResponse{Answer: strings.TrimSpace(answer)}, nil
}
