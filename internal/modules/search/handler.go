package search

import (
	"strconv"

	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"github.com/budhitree/nexus-art-gallery/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler accepts a nil searcher; every request then answers 503.
func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

func (h *SearchHandler) Search(c *gin.Context) {
	if h.searcher == nil {
		response.Error(c, apperror.Wrap(apperror.ErrServiceUnavailable, "search is not configured"))
		return
	}

	query := c.Query("q")
	if query == "" {
		response.Error(c, apperror.Wrap(apperror.ErrValidation, "q is required"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	artworks, err := h.searcher.Search(c.Request.Context(), query, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, artworks)
}
