package reaction

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rightsvoice/backend/internal/entity"
	commentRepo "github.com/rightsvoice/backend/internal/modules/comment/repository"
	notifService "github.com/rightsvoice/backend/internal/modules/notification/service"
	postRepo "github.com/rightsvoice/backend/internal/modules/post/repository"
	reactionDto "github.com/rightsvoice/backend/internal/modules/reaction/dto"
	reactionRepo "github.com/rightsvoice/backend/internal/modules/reaction/repository"
	"github.com/rightsvoice/backend/pkg/dto"
)

// reactionLabels are used in notification messages.
var reactionLabels = map[string]string{
	entity.ReactionTrue:   "confirmed",
	entity.ReactionFalse:  "disputed",
	entity.ReactionNotice: "flagged for notice",
}

type ReactionService interface {
	Toggle(ctx context.Context, userID uuid.UUID, req reactionDto.ReactionToggleRequest) (*dto.ReactionsResponse, error)
	GetReactions(ctx context.Context, userID *uuid.UUID, refID uuid.UUID, refType string) (*dto.ReactionsResponse, error)
}

type reactionService struct {
	repo                reactionRepo.ReactionRepository
	redisClient         *redis.Client
	notificationService notifService.NotificationService
	postRepo            postRepo.PostRepository
	commentRepo         commentRepo.CommentRepository
}

func NewReactionService(repo reactionRepo.ReactionRepository, redisClient *redis.Client, notificationService notifService.NotificationService, postRepo postRepo.PostRepository, commentRepo commentRepo.CommentRepository) ReactionService {
	return &reactionService{
		repo:                repo,
		redisClient:         redisClient,
		notificationService: notificationService,
		postRepo:            postRepo,
		commentRepo:         commentRepo,
	}
}

func (s *reactionService) Toggle(ctx context.Context, userID uuid.UUID, req reactionDto.ReactionToggleRequest) (*dto.ReactionsResponse, error) {
	reaction := &entity.Reaction{
		UserID:        userID,
		ReferenceID:   req.ReferenceID,
		ReferenceType: req.ReferenceType,
		Type:          req.Type,
	}

	// 1. DB toggle (insert, replace or delete)
	oldType, newType, err := s.repo.Toggle(ctx, reaction)
	if err != nil {
		return nil, err
	}

	// 2. Keep the cached counts in step
	if s.redisClient != nil {
		redisKey := countsKey(req.ReferenceType, req.ReferenceID)
		pipe := s.redisClient.Pipeline()

		if oldType != "" {
			pipe.HIncrBy(ctx, redisKey, oldType, -1)
		}
		if newType != "" {
			pipe.HIncrBy(ctx, redisKey, newType, 1)
		}

		if _, err := pipe.Exec(ctx); err != nil {
			// Log only, the DB already holds the truth
			log.Printf("redis reaction count update failed: %v", err)
		}
	}

	// 3. Notify the content author when a reaction becomes active
	if newType != "" && s.notificationService != nil {
		go s.notifyAuthor(userID, req.ReferenceID, req.ReferenceType, newType)
	}

	return s.GetReactions(ctx, &userID, req.ReferenceID, req.ReferenceType)
}

func (s *reactionService) notifyAuthor(actorID uuid.UUID, refID uuid.UUID, refType, reactionType string) {
	ctx := context.Background()

	var authorID uuid.UUID
	switch refType {
	case entity.ReferencePost:
		post, err := s.postRepo.FindByID(ctx, refID)
		if err == nil {
			authorID = post.UserID
		}
	case entity.ReferenceComment:
		comment, err := s.commentRepo.FindByID(ctx, refID)
		if err == nil {
			authorID = comment.UserID
		}
	}

	if authorID == uuid.Nil || authorID == actorID {
		return
	}

	notif := &entity.Notification{
		UserID:     authorID,
		ActorID:    actorID,
		EntityID:   refID,
		EntityType: refType,
		Type:       "reaction",
		Message:    fmt.Sprintf("Someone %s your %s", reactionLabels[reactionType], refType),
	}
	_ = s.notificationService.CreateNotification(ctx, notif)
}

func (s *reactionService) GetReactions(ctx context.Context, userID *uuid.UUID, refID uuid.UUID, refType string) (*dto.ReactionsResponse, error) {
	counts := make(map[string]int64)
	cacheHit := false

	// 1. Try the redis hash first
	if s.redisClient != nil {
		val, err := s.redisClient.HGetAll(ctx, countsKey(refType, refID)).Result()
		if err == nil && len(val) > 0 {
			cacheHit = true
			for k, v := range val {
				if k == countsPlaceholderField {
					continue
				}
				count, _ := strconv.ParseInt(v, 10, 64)
				if count > 0 { // stale decrements can leave zeros behind
					counts[k] = count
				}
			}
		}
	}

	// 2. On miss, rebuild from the DB and repopulate
	if !cacheHit {
		dbCounts, err := s.repo.GetCounts(ctx, refID, refType)
		if err != nil {
			return nil, err
		}
		counts = dbCounts

		if s.redisClient != nil {
			redisKey := countsKey(refType, refID)
			pipe := s.redisClient.Pipeline()
			pipe.Del(ctx, redisKey)
			// The placeholder keeps the hash non-empty so an entity with no
			// reactions still counts as a cache hit. Reads filter it out
			// along with any zeroed fields.
			pipe.HSet(ctx, redisKey, countsPlaceholderField, 0)
			for reactionType, count := range counts {
				pipe.HSet(ctx, redisKey, reactionType, count)
			}
			pipe.Expire(ctx, redisKey, 7*24*time.Hour)
			_, _ = pipe.Exec(ctx)
		}
	}

	// 3. Requesting user's active reaction
	var userReacted *string
	if userID != nil {
		active, err := s.repo.GetUserReaction(ctx, *userID, refID, refType)
		if err != nil {
			return nil, err
		}
		userReacted = active
	}

	// Ensure a non-nil map for JSON marshalling
	if counts == nil {
		counts = make(map[string]int64)
	}

	return &dto.ReactionsResponse{
		Counts:      counts,
		UserReacted: userReacted,
	}, nil
}

// countsPlaceholderField is written on every rebuild; never a reaction type.
const countsPlaceholderField = "_"

func countsKey(refType string, refID uuid.UUID) string {
	return fmt.Sprintf("counts:%s:%s", refType, refID.String())
}
