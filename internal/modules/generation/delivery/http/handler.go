package handler

import (
	"github.com/budhitree/nexus-art-gallery/internal/modules/generation/dto"
	generation "github.com/budhitree/nexus-art-gallery/internal/modules/generation/service"
	"github.com/budhitree/nexus-art-gallery/pkg/response"
	"github.com/budhitree/nexus-art-gallery/pkg/validator"
	"github.com/gin-gonic/gin"
)

type GenerationHandler struct {
	service generation.GenerationService
}

func NewGenerationHandler(service generation.GenerationService) *GenerationHandler {
	return &GenerationHandler{service: service}
}

func (h *GenerationHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validator.BindError(err))
		return
	}

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
