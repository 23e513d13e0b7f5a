package comment

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rightsvoice/backend/internal/entity"
	commentDto "github.com/rightsvoice/backend/internal/modules/comment/dto"
	commentRepo "github.com/rightsvoice/backend/internal/modules/comment/repository"
	notifService "github.com/rightsvoice/backend/internal/modules/notification/service"
	points "github.com/rightsvoice/backend/internal/modules/points/service"
	postRepo "github.com/rightsvoice/backend/internal/modules/post/repository"
	reaction "github.com/rightsvoice/backend/internal/modules/reaction/service"
	userRepo "github.com/rightsvoice/backend/internal/modules/user/repository"
	"github.com/rightsvoice/backend/pkg/apperror"
	"github.com/rightsvoice/backend/pkg/dto"
	"github.com/rightsvoice/backend/pkg/ratelimiter"
	"gorm.io/gorm"
)

type CommentService interface {
	// Create charges the fixed action cost and inserts the comment in one
	// transaction. A balance below the cost rejects the submission before
	// anything is written.
	Create(ctx context.Context, userID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentResponse, error)
	GetByPostID(ctx context.Context, postID uuid.UUID, userID *uuid.UUID) ([]*commentDto.CommentResponse, error)
	Update(ctx context.Context, userID uuid.UUID, commentID uuid.UUID, req commentDto.UpdateCommentRequest) (*commentDto.CommentResponse, error)
	Delete(ctx context.Context, userID uuid.UUID, commentID uuid.UUID) error
}

type commentService struct {
	db                  *gorm.DB
	repo                commentRepo.CommentRepository
	postRepo            postRepo.PostRepository
	userRepo            userRepo.UserRepository
	pointsService       points.PointsService
	reactionService     reaction.ReactionService
	notificationService notifService.NotificationService
	redisClient         *redis.Client
	sanitizer           *bluemonday.Policy
}

func NewCommentService(db *gorm.DB, repo commentRepo.CommentRepository, postRepo postRepo.PostRepository, userRepo userRepo.UserRepository, pointsService points.PointsService, reactionService reaction.ReactionService, notificationService notifService.NotificationService, redisClient *redis.Client) CommentService {
	return &commentService{
		db:                  db,
		repo:                repo,
		postRepo:            postRepo,
		userRepo:            userRepo,
		pointsService:       pointsService,
		reactionService:     reactionService,
		notificationService: notificationService,
		redisClient:         redisClient,
		sanitizer:           bluemonday.UGCPolicy(),
	}
}

func (s *commentService) Create(ctx context.Context, userID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentResponse, error) {
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid post id", apperror.ErrInvalidInput)
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
	}

	actionType := entity.ActionCommentCreation
	var parentID *uuid.UUID
	var parent *entity.Comment
	if req.ParentID != "" {
		pid, err := uuid.Parse(req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid parent id", apperror.ErrInvalidInput)
		}
		parent, err = s.repo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("parent comment not found: %w", apperror.ErrNotFound)
		}
		if parent.PostID != postID {
			return nil, fmt.Errorf("%w: parent comment belongs to another post", apperror.ErrInvalidInput)
		}
		parentID = &pid
		actionType = entity.ActionReplyCreation
	}

	// Cooldown between comments, rolled back if creation fails
	limit := ratelimiter.GetDurationFromEnv("RATE_LIMIT_COMMENT", 5*time.Second)
	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, "comment", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, "comment")
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are commenting too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, "comment")
		}
	}()

	// Gating: the submission is rejected outright when the derived balance
	// cannot cover the cost. No deduction is written in that case.
	balance := s.pointsService.GetBalance(ctx, userID)
	if balance < entity.ActionCost {
		return nil, fmt.Errorf("%w: balance %d, need %d", apperror.ErrInsufficientPoints, balance, entity.ActionCost)
	}

	comment := &entity.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Content:  s.sanitizer.Sanitize(req.Content),
	}

	// Debit and create are all-or-nothing: a failed insert rolls the
	// deduction back instead of leaving points spent on nothing.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.pointsService.WithTx(tx).ChargeForAction(ctx, userID, actionType); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	creationFailed = false

	go s.notifyOnCreate(userID, post, parent, comment)

	// Reload for the denormalized author fields
	if created, err := s.repo.FindByID(ctx, comment.ID); err == nil {
		comment = created
	}

	return s.mapToResponse(ctx, comment, &userID), nil
}

func (s *commentService) notifyOnCreate(actorID uuid.UUID, post *entity.Post, parent *entity.Comment, comment *entity.Comment) {
	if s.notificationService == nil {
		return
	}
	ctx := context.Background()

	var targetUserID uuid.UUID
	var message string
	if parent != nil {
		if parent.UserID != actorID {
			targetUserID = parent.UserID
			message = "Someone replied to your comment"
		}
	} else if post.UserID != actorID {
		targetUserID = post.UserID
		message = "Someone commented on your post"
	}

	if targetUserID == uuid.Nil {
		return
	}

	notif := &entity.Notification{
		UserID:     targetUserID,
		ActorID:    actorID,
		EntityID:   comment.ID,
		EntityType: entity.ReferenceComment,
		Type:       "reply",
		Message:    message,
	}
	if err := s.notificationService.CreateNotification(ctx, notif); err != nil {
		log.Printf("failed to create reply notification: %v", err)
	}
}

func (s *commentService) GetByPostID(ctx context.Context, postID uuid.UUID, userID *uuid.UUID) ([]*commentDto.CommentResponse, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.repo.FindAllByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	flat := make([]*commentDto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		flat = append(flat, s.mapToResponse(ctx, c, userID))
	}

	return BuildTree(flat), nil
}

func (s *commentService) Update(ctx context.Context, userID uuid.UUID, commentID uuid.UUID, req commentDto.UpdateCommentRequest) (*commentDto.CommentResponse, error) {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != userID {
		return nil, fmt.Errorf("%w: you can only edit your own comment", apperror.ErrForbidden)
	}

	comment.Content = s.sanitizer.Sanitize(req.Content)
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.mapToResponse(ctx, comment, &userID), nil
}

func (s *commentService) Delete(ctx context.Context, userID uuid.UUID, commentID uuid.UUID) error {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		user, err := s.userRepo.FindByID(ctx, userID.String())
		if err != nil || user.Role.Name != "admin" {
			return fmt.Errorf("%w: you can only delete your own comment", apperror.ErrForbidden)
		}
	}

	// Replies cascade via the parent FK
	return s.repo.Delete(ctx, commentID)
}

func (s *commentService) mapToResponse(ctx context.Context, comment *entity.Comment, userID *uuid.UUID) *commentDto.CommentResponse {
	author := dto.AuthorResponse{Username: "Unknown"}
	if comment.User.Username != "" {
		author.Username = comment.User.Username
		author.AvatarURL = comment.User.AvatarURL
		author.Country = comment.User.Country
	}

	reactions, err := s.reactionService.GetReactions(ctx, userID, comment.ID, entity.ReferenceComment)
	if err != nil || reactions == nil {
		reactions = &dto.ReactionsResponse{Counts: map[string]int64{}}
	}

	return &commentDto.CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		Author:    author,
		Reactions: *reactions,
		Replies:   []*commentDto.CommentResponse{},
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
