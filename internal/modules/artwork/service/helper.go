package artwork

import (
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
)

const (
	DefaultUploadTitle    = "Untitled"
	UploadDescription     = "Student Submission"
	DefaultGeneratedTitle = "AI Generated Artwork"
	GeneratedDescription  = "AI Generated Art"
)

// Draft holds the caller-supplied fields of a new artwork.
type Draft struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	PromptText  string
	ImagePath   string
	UploadedAt  time.Time
}

// NewArtwork builds the record shared by manual uploads and generated commits.
// The artist label is always ArtistPrefix plus the owner id, whatever the role.
func NewArtwork(d Draft, defaultTitle string) entity.Artwork {
	title := d.Title
	if title == "" {
		title = defaultTitle
	}
	return entity.Artwork{
		ID:          d.ID,
		Title:       title,
		Artist:      entity.ArtistLabel(d.OwnerID),
		Description: d.Description,
		ImagePath:   d.ImagePath,
		PromptText:  d.PromptText,
		UploadedAt:  d.UploadedAt.UTC(),
		OwnerID:     d.OwnerID,
	}
}

// UploadFileName names a manual upload <ms>-<random><ext>; the artwork id is the ms part.
// Ids are not checked for uniqueness.
func UploadFileName(now time.Time, originalName string) (id, fileName string) {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	ext := filepath.Ext(filepath.Base(originalName))
	return ms, ms + "-" + strconv.Itoa(rand.IntN(1_000_000_000)) + ext
}

// GeneratedFileName names a committed generated image ai_<ms>_<suffix>.jpg
// and returns the matching artwork id <ms>_<suffix>.
func GeneratedFileName(now time.Time) (id, fileName string) {
	id = strconv.FormatInt(now.UnixMilli(), 10) + "_" + randomBase36(9)
	return id, "ai_" + id + ".jpg"
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}
