package search

import (
	"html"
	"log"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rightsvoice/backend/internal/entity"
)

const (
	IndexPosts    = "posts"
	IndexArticles = "articles"
)

type SearchService interface {
	IndexPost(post *entity.Post) error
	IndexArticle(article *entity.Article) error
	DeletePost(id string) error
	DeleteArticle(id string) error
	Search(index, query string, limit int64) (*meilisearch.SearchResponse, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	postSortable := []string{"created_at"}
	if _, err := s.client.Index(IndexPosts).UpdateSortableAttributes(&postSortable); err != nil {
		log.Printf("failed to update posts sortable attributes: %v", err)
	}

	articleFilterable := []string{"topic"}
	filterableInterface := make([]any, len(articleFilterable))
	for i, v := range articleFilterable {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(IndexArticles).UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("failed to update articles filterable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type meiliPostDoc struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"created_at"`
}

type meiliArticleDoc struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	Topic     string `json:"topic"`
	CreatedAt int64  `json:"created_at"`
}

// cleanContentForIndex strips markup so only readable text gets indexed.
func (s *searchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexPost(post *entity.Post) error {
	doc := meiliPostDoc{
		ID:        post.ID.String(),
		Content:   s.cleanContentForIndex(post.Content),
		Username:  post.User.Username,
		CreatedAt: post.CreatedAt.Unix(),
	}

	_, err := s.client.Index(IndexPosts).AddDocuments([]meiliPostDoc{doc}, strPtr("id"))
	return err
}

func (s *searchService) IndexArticle(article *entity.Article) error {
	doc := meiliArticleDoc{
		ID:        article.ID.String(),
		Title:     article.Title,
		Slug:      article.Slug,
		Summary:   article.Summary,
		Content:   s.cleanContentForIndex(article.Content),
		Topic:     article.Topic,
		CreatedAt: article.CreatedAt.Unix(),
	}

	_, err := s.client.Index(IndexArticles).AddDocuments([]meiliArticleDoc{doc}, strPtr("id"))
	return err
}

func (s *searchService) DeletePost(id string) error {
	_, err := s.client.Index(IndexPosts).DeleteDocument(id)
	return err
}

func (s *searchService) DeleteArticle(id string) error {
	_, err := s.client.Index(IndexArticles).DeleteDocument(id)
	return err
}

func (s *searchService) Search(index, query string, limit int64) (*meilisearch.SearchResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	return s.client.Index(index).Search(query, &meilisearch.SearchRequest{
		Limit: limit,
	})
}

func strPtr(s string) *string {
	return &s
}
