package dto

import "github.com/budhitree/nexus-art-gallery/internal/entity"

// SaveToGalleryRequest is the body of POST /api/ai/save-to-gallery.
type SaveToGalleryRequest struct {
	ImageIDs  []string          `json:"imageIds"`
	Title     string            `json:"title" binding:"max=200"`
	Prompt    string            `json:"prompt"`
	User      string            `json:"user"`
	ImageURLs map[string]string `json:"imageUrls"`
}

type CommitInput struct {
	UserID      string
	Title       string
	PromptText  string
	SelectedIDs []string
	URLByID     map[string]string
}

type CommitResult struct {
	Message  string           `json:"message"`
	Artworks []entity.Artwork `json:"artworks"`
	Count    int              `json:"count"`
}
