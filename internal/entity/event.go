package entity

type EventType string

const (
	EventArtworkCreated EventType = "artwork.created"
	EventArtworkDeleted EventType = "artwork.deleted"
)

// ArtworkEvent is published after a gallery change has been persisted.
type ArtworkEvent struct {
	Type     EventType `json:"type"`
	Artworks []Artwork `json:"artworks"`
}
