package generation

import (
	"context"
	"strings"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/budhitree/nexus-art-gallery/internal/modules/generation/dto"
	"github.com/budhitree/nexus-art-gallery/internal/modules/generation/provider"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
)

// ImageGenerator is the part of provider.Client the service needs.
type ImageGenerator interface {
	IsEnabled() bool
	TextToImage(ctx context.Context, prompt string, opts provider.Options) ([]entity.ImageDescriptor, error)
	ImageToImage(ctx context.Context, prompt string, references []string, opts provider.Options) ([]entity.ImageDescriptor, error)
}

type GenerationService interface {
	Generate(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, error)
}

type generationService struct {
	generator ImageGenerator
}

func NewGenerationService(generator ImageGenerator) GenerationService {
	return &generationService{generator: generator}
}

// Generate returns every descriptor the provider produced, failed items included.
func (s *generationService) Generate(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, apperror.Wrap(apperror.ErrValidation, "prompt is required")
	}
	if !s.generator.IsEnabled() {
		return nil, apperror.Wrap(apperror.ErrServiceUnavailable, "image generation is not configured; set VOLC_API_KEY and VOLC_SEEDREAM_ENDPOINT in .env")
	}

	opts := provider.Options{
		Size:           req.Options.Scale,
		Model:          provider.DefaultModel,
		ResponseFormat: provider.ResponseFormatURL,
		Watermark:      req.Options.Watermark,
		MaxImages:      req.Options.MaxImages,
	}

	var (
		images []entity.ImageDescriptor
		err    error
	)
	if len(req.Options.ReferenceImages) > 0 {
		images, err = s.generator.ImageToImage(ctx, prompt, req.Options.ReferenceImages, opts)
	} else {
		images, err = s.generator.TextToImage(ctx, prompt, opts)
	}
	if err != nil {
		return nil, err
	}

	return &dto.GenerateResponse{Images: images, Prompt: prompt}, nil
}
