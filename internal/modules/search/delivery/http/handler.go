package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	search "github.com/rightsvoice/backend/internal/modules/search/service"
	"github.com/rightsvoice/backend/pkg/response"
)

type SearchHandler struct {
	service search.SearchService
}

func NewSearchHandler(service search.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	index := c.DefaultQuery("index", search.IndexPosts)
	if index != search.IndexPosts && index != search.IndexArticles {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	resp, err := h.service.Search(index, query, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hits": resp.Hits, "total": resp.EstimatedTotalHits})
}
