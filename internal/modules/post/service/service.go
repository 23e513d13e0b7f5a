package post

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rightsvoice/backend/internal/entity"
	commentRepo "github.com/rightsvoice/backend/internal/modules/comment/repository"
	postDto "github.com/rightsvoice/backend/internal/modules/post/dto"
	postRepo "github.com/rightsvoice/backend/internal/modules/post/repository"
	reaction "github.com/rightsvoice/backend/internal/modules/reaction/service"
	search "github.com/rightsvoice/backend/internal/modules/search/service"
	userRepo "github.com/rightsvoice/backend/internal/modules/user/repository"
	"github.com/rightsvoice/backend/pkg/apperror"
	"github.com/rightsvoice/backend/pkg/dto"
	"github.com/rightsvoice/backend/pkg/ratelimiter"
	"github.com/rightsvoice/backend/pkg/storage"
)

type PostService interface {
	Create(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest, image io.Reader, imageName string) (*postDto.PostResponse, error)
	GetAll(ctx context.Context, userID *uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error)
	GetByID(ctx context.Context, postID uuid.UUID, userID *uuid.UUID) (*postDto.PostResponse, error)
	GetByUsername(ctx context.Context, username string, userID *uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error)
	Update(ctx context.Context, userID uuid.UUID, postID uuid.UUID, req postDto.UpdatePostRequest) (*postDto.PostResponse, error)
	Delete(ctx context.Context, userID uuid.UUID, postID uuid.UUID) error
}

type postService struct {
	repo            postRepo.PostRepository
	commentRepo     commentRepo.CommentRepository
	userRepo        userRepo.UserRepository
	reactionService reaction.ReactionService
	searchService   search.SearchService
	fileStorage     storage.ImageStorage
	redisClient     *redis.Client
	sanitizer       *bluemonday.Policy
}

func NewPostService(repo postRepo.PostRepository, commentRepo commentRepo.CommentRepository, userRepo userRepo.UserRepository, reactionService reaction.ReactionService, searchService search.SearchService, fileStorage storage.ImageStorage, redisClient *redis.Client) PostService {
	return &postService{
		repo:            repo,
		commentRepo:     commentRepo,
		userRepo:        userRepo,
		reactionService: reactionService,
		searchService:   searchService,
		fileStorage:     fileStorage,
		redisClient:     redisClient,
		sanitizer:       bluemonday.UGCPolicy(),
	}
}

func (s *postService) Create(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest, image io.Reader, imageName string) (*postDto.PostResponse, error) {
	limit := ratelimiter.GetDurationFromEnv("RATE_LIMIT_POST", 15*time.Second)
	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, "post", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, "post")
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you can only create one post every %.0f seconds. Please wait %.0f seconds", limit.Seconds(), ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, "post")
		}
	}()

	post := &entity.Post{
		UserID:  userID,
		Content: s.sanitizer.Sanitize(req.Content),
	}

	if image != nil && s.fileStorage != nil {
		url, err := s.fileStorage.UploadImage(ctx, image, "posts", imageName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload post image: %w", err)
		}
		post.ImageURL = &url
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	creationFailed = false

	// Reload for the author fields
	if created, err := s.repo.FindByID(ctx, post.ID); err == nil {
		post = created
	}

	if s.searchService != nil {
		if err := s.searchService.IndexPost(post); err != nil {
			log.Printf("failed to index post %s: %v", post.ID, err)
		}
	}

	return s.mapToResponse(ctx, post, &userID), nil
}

func (s *postService) GetAll(ctx context.Context, userID *uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error) {
	page, limit := normalizeFilter(filter)

	posts, total, err := s.repo.FindAll(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return s.paginate(ctx, posts, total, page, limit, userID), nil
}

func (s *postService) GetByUsername(ctx context.Context, username string, userID *uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	page, limit := normalizeFilter(filter)

	posts, total, err := s.repo.FindByUserID(ctx, user.ID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return s.paginate(ctx, posts, total, page, limit, userID), nil
}

func (s *postService) GetByID(ctx context.Context, postID uuid.UUID, userID *uuid.UUID) (*postDto.PostResponse, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.mapToResponse(ctx, post, userID), nil
}

func (s *postService) Update(ctx context.Context, userID uuid.UUID, postID uuid.UUID, req postDto.UpdatePostRequest) (*postDto.PostResponse, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.UserID != userID {
		return nil, fmt.Errorf("%w: you can only update your own post", apperror.ErrForbidden)
	}

	post.Content = s.sanitizer.Sanitize(req.Content)
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	if s.searchService != nil {
		_ = s.searchService.IndexPost(post)
	}

	return s.mapToResponse(ctx, post, &userID), nil
}

func (s *postService) Delete(ctx context.Context, userID uuid.UUID, postID uuid.UUID) error {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.UserID != userID {
		user, err := s.userRepo.FindByID(ctx, userID.String())
		if err != nil || user.Role.Name != "admin" {
			return fmt.Errorf("%w: you can only delete your own post", apperror.ErrForbidden)
		}
	}

	if post.ImageURL != nil && s.fileStorage != nil {
		_ = s.fileStorage.DeleteImage(ctx, *post.ImageURL)
	}

	// Comments cascade via FK
	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}

	if s.searchService != nil {
		_ = s.searchService.DeletePost(postID.String())
	}

	return nil
}

func (s *postService) paginate(ctx context.Context, posts []*entity.Post, total int64, page, limit int, userID *uuid.UUID) *postDto.PaginatedPostResponse {
	data := make([]postDto.PostResponse, 0, len(posts))
	for _, p := range posts {
		data = append(data, *s.mapToResponse(ctx, p, userID))
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &postDto.PaginatedPostResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       limit,
		},
	}
}

func (s *postService) mapToResponse(ctx context.Context, post *entity.Post, userID *uuid.UUID) *postDto.PostResponse {
	author := dto.AuthorResponse{Username: "Unknown"}
	if post.User.Username != "" {
		author.Username = post.User.Username
		author.AvatarURL = post.User.AvatarURL
		author.Country = post.User.Country
	}

	reactions, err := s.reactionService.GetReactions(ctx, userID, post.ID, entity.ReferencePost)
	if err != nil || reactions == nil {
		reactions = &dto.ReactionsResponse{Counts: map[string]int64{}}
	}

	commentCount, _ := s.commentRepo.CountByPostID(ctx, post.ID)

	return &postDto.PostResponse{
		ID:           post.ID,
		Content:      post.Content,
		ImageURL:     post.ImageURL,
		Author:       author,
		Reactions:    *reactions,
		CommentCount: commentCount,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}
}

func normalizeFilter(filter postDto.PostFilter) (int, int) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return page, limit
}
