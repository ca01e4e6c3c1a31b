package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/budhitree/nexus-art-gallery/internal/modules/artwork/dto"
	artwork "github.com/budhitree/nexus-art-gallery/internal/modules/artwork/service"
	"github.com/budhitree/nexus-art-gallery/pkg/response"
	"github.com/budhitree/nexus-art-gallery/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ArtworkHandler struct {
	service artwork.ArtworkService
}

func NewArtworkHandler(service artwork.ArtworkService) *ArtworkHandler {
	return &ArtworkHandler{service: service}
}

// Upload handles multipart fields image, title, prompt and user.
func (h *ArtworkHandler) Upload(c *gin.Context) {
	input := dto.UploadInput{
		UserID:     c.PostForm("user"),
		Title:      c.PostForm("title"),
		PromptText: c.PostForm("prompt"),
	}

	// a missing file is reported by the service as a validation error
	if header, err := c.FormFile("image"); err == nil {
		f, err := header.Open()
		if err != nil {
			response.Error(c, fmt.Errorf("open uploaded file: %w", err))
			return
		}
		defer f.Close()
		input.File = f
		input.FileName = header.Filename
	}

	art, err := h.service.Upload(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, art)
}

func (h *ArtworkHandler) GetGallery(c *gin.Context) {
	artworks, err := h.service.ListGallery(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, artworks)
}

// DeleteArtwork reads the requester from a JSON body, falling back to ?user=.
func (h *ArtworkHandler) DeleteArtwork(c *gin.Context) {
	var req dto.DeleteArtworkRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(c, validator.BindError(err))
			return
		}
	}
	if req.User == "" {
		req.User = c.Query("user")
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), req.User); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.MessageResponse{Message: "artwork deleted"})
}

func (h *ArtworkHandler) GetStudents(c *gin.Context) {
	ids, err := h.service.ListOwnerIDs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ids)
}
