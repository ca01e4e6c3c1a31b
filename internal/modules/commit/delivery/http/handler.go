package handler

import (
	"errors"
	"net/http"

	"github.com/budhitree/nexus-art-gallery/internal/modules/commit/dto"
	commit "github.com/budhitree/nexus-art-gallery/internal/modules/commit/service"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"github.com/budhitree/nexus-art-gallery/pkg/response"
	"github.com/budhitree/nexus-art-gallery/pkg/validator"
	"github.com/gin-gonic/gin"
)

type CommitHandler struct {
	service commit.CommitService
}

func NewCommitHandler(service commit.CommitService) *CommitHandler {
	return &CommitHandler{service: service}
}

func (h *CommitHandler) SaveToGallery(c *gin.Context) {
	var req dto.SaveToGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	result, err := h.service.CommitSelected(c.Request.Context(), dto.CommitInput{
		UserID:      req.User,
		Title:       req.Title,
		PromptText:  req.Prompt,
		SelectedIDs: req.ImageIDs,
		URLByID:     req.ImageURLs,
	})
	if err != nil {
		// this endpoint reports a missing user as a bad request
		if errors.Is(err, apperror.ErrAuthRequired) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err)
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
