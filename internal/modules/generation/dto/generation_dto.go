package dto

import "github.com/budhitree/nexus-art-gallery/internal/entity"

type GenerateRequest struct {
	Prompt  string          `json:"prompt" binding:"required"`
	Options GenerateOptions `json:"options"`
}

type GenerateOptions struct {
	// Scale is the provider size, e.g. "2048x2048" or "2K".
	Scale           string   `json:"scale"`
	ReferenceImages []string `json:"referenceImages" binding:"max=10"`
	MaxImages       int      `json:"maxImages" binding:"min=0,max=15"`
	Watermark       bool     `json:"watermark"`
}

type GenerateResponse struct {
	Images []entity.ImageDescriptor `json:"images"`
	Prompt string                   `json:"prompt"`
}
