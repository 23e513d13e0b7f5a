package education

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rightsvoice/backend/internal/entity"
	educationDto "github.com/rightsvoice/backend/internal/modules/education/dto"
	educationRepo "github.com/rightsvoice/backend/internal/modules/education/repository"
	search "github.com/rightsvoice/backend/internal/modules/search/service"
	"github.com/rightsvoice/backend/pkg/dto"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

type EducationService interface {
	Create(ctx context.Context, req educationDto.CreateArticleRequest) (*educationDto.ArticleResponse, error)
	GetBySlug(ctx context.Context, slug string) (*educationDto.ArticleResponse, error)
	GetAll(ctx context.Context, filter educationDto.ArticleFilter) (*educationDto.PaginatedArticleResponse, error)
	Update(ctx context.Context, articleID uuid.UUID, req educationDto.UpdateArticleRequest) (*educationDto.ArticleResponse, error)
	Delete(ctx context.Context, articleID uuid.UUID) error
}

type educationService struct {
	repo          educationRepo.ArticleRepository
	searchService search.SearchService
	sanitizer     *bluemonday.Policy
}

func NewEducationService(repo educationRepo.ArticleRepository, searchService search.SearchService) EducationService {
	return &educationService{
		repo:          repo,
		searchService: searchService,
		sanitizer:     bluemonday.UGCPolicy(),
	}
}

func (s *educationService) Create(ctx context.Context, req educationDto.CreateArticleRequest) (*educationDto.ArticleResponse, error) {
	article := &entity.Article{
		Title:   strings.TrimSpace(req.Title),
		Slug:    s.uniqueSlug(ctx, req.Title),
		Summary: s.sanitizer.Sanitize(req.Summary),
		Content: s.sanitizer.Sanitize(req.Content),
		Topic:   strings.TrimSpace(req.Topic),
	}

	if err := s.repo.Create(ctx, article); err != nil {
		return nil, err
	}

	if s.searchService != nil {
		if err := s.searchService.IndexArticle(article); err != nil {
			log.Printf("failed to index article %s: %v", article.ID, err)
		}
	}

	return mapToResponse(article, true), nil
}

func (s *educationService) GetBySlug(ctx context.Context, slug string) (*educationDto.ArticleResponse, error) {
	article, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return mapToResponse(article, true), nil
}

func (s *educationService) GetAll(ctx context.Context, filter educationDto.ArticleFilter) (*educationDto.PaginatedArticleResponse, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 50 {
		limit = 10
	}

	articles, total, err := s.repo.FindAll(ctx, filter.Topic, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	// Listing omits the full content
	data := make([]educationDto.ArticleResponse, 0, len(articles))
	for _, a := range articles {
		data = append(data, *mapToResponse(a, false))
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &educationDto.PaginatedArticleResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       limit,
		},
	}, nil
}

func (s *educationService) Update(ctx context.Context, articleID uuid.UUID, req educationDto.UpdateArticleRequest) (*educationDto.ArticleResponse, error) {
	article, err := s.repo.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}

	// The slug is stable, retitling never breaks published links
	if req.Title != "" {
		article.Title = strings.TrimSpace(req.Title)
	}
	if req.Summary != "" {
		article.Summary = s.sanitizer.Sanitize(req.Summary)
	}
	if req.Content != "" {
		article.Content = s.sanitizer.Sanitize(req.Content)
	}
	if req.Topic != "" {
		article.Topic = strings.TrimSpace(req.Topic)
	}

	if err := s.repo.Update(ctx, article); err != nil {
		return nil, err
	}

	if s.searchService != nil {
		if err := s.searchService.IndexArticle(article); err != nil {
			log.Printf("failed to re-index article %s: %v", article.ID, err)
		}
	}

	return mapToResponse(article, true), nil
}

func (s *educationService) Delete(ctx context.Context, articleID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, articleID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, articleID); err != nil {
		return err
	}

	if s.searchService != nil {
		if err := s.searchService.DeleteArticle(articleID.String()); err != nil {
			log.Printf("failed to remove article %s from index: %v", articleID, err)
		}
	}

	return nil
}

func (s *educationService) uniqueSlug(ctx context.Context, title string) string {
	slug := Slugify(title)
	if _, err := s.repo.FindBySlug(ctx, slug); err != nil {
		return slug
	}
	// Collision, suffix with a short random fragment
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
}

// Slugify turns a title into a lowercase URL-safe slug.
func Slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

func mapToResponse(article *entity.Article, includeContent bool) *educationDto.ArticleResponse {
	resp := &educationDto.ArticleResponse{
		ID:        article.ID,
		Title:     article.Title,
		Slug:      article.Slug,
		Summary:   article.Summary,
		Topic:     article.Topic,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
	if includeContent {
		resp.Content = article.Content
	}
	return resp
}
