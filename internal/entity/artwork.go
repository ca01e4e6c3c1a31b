package entity

import "time"

// ArtistPrefix is prepended to the owner id to build the display label.
// It is the same for every role.
const ArtistPrefix = "Student_"

type Artwork struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Description string    `json:"desc"`
	ImagePath   string    `json:"image"`
	PromptText  string    `json:"prompt"`
	UploadedAt  time.Time `json:"uploadedAt"`
	OwnerID     string    `json:"ownerId,omitempty"`
	OwnerRole   Role      `json:"ownerRole,omitempty"`
}

func ArtistLabel(userID string) string {
	return ArtistPrefix + userID
}

// OwnedBy reports whether userID owns the artwork. Records written before
// ownerId existed are matched through the artist label.
func (a *Artwork) OwnedBy(userID string) bool {
	if userID == "" {
		return false
	}
	if a.OwnerID != "" {
		return a.OwnerID == userID
	}
	return a.Artist == ArtistLabel(userID)
}

// Owner returns the owning user id, recovering it from the label for legacy records.
func (a *Artwork) Owner() string {
	if a.OwnerID != "" {
		return a.OwnerID
	}
	if len(a.Artist) > len(ArtistPrefix) && a.Artist[:len(ArtistPrefix)] == ArtistPrefix {
		return a.Artist[len(ArtistPrefix):]
	}
	return ""
}
