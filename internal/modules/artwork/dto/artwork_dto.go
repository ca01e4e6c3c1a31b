package dto

import "io"

// UploadInput is a manual upload. File is nil when the request carried no image.
type UploadInput struct {
	UserID     string
	Title      string
	PromptText string
	File       io.Reader
	FileName   string
}

// DeleteArtworkRequest accepts the requester from the body or the query string.
type DeleteArtworkRequest struct {
	User string `json:"user" form:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
