package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"github.com/budhitree/nexus-art-gallery/pkg/sanitize"
	"github.com/meilisearch/meilisearch-go"
)

const (
	IndexName    = "artworks"
	DefaultLimit = 20
	MaxLimit     = 100

	// DefaultWriteTimeout caps how long an index write may hold up the
	// upload or delete request that triggered it.
	DefaultWriteTimeout = 3 * time.Second
)

// Searcher answers gallery search queries.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]entity.Artwork, error)
}

// Indexer mirrors the gallery into a meilisearch index. It listens for
// artwork events and serves searches against the same index.
type Indexer struct {
	client       meilisearch.ServiceManager
	writeTimeout time.Duration
}

func NewIndexer(client meilisearch.ServiceManager) *Indexer {
	i := &Indexer{client: client, writeTimeout: DefaultWriteTimeout}
	i.initIndex()
	return i
}

func (i *Indexer) initIndex() {
	filterable := []any{"ownerId", "ownerRole"}
	if _, err := i.client.Index(IndexName).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update artworks filterable attributes: %v", err)
	}

	sortable := []string{"uploadedAt"}
	if _, err := i.client.Index(IndexName).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update artworks sortable attributes: %v", err)
	}

	log.Println("Meilisearch artworks index initialized")
}

type artworkDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Description string `json:"desc"`
	PromptText  string `json:"prompt"`
	ImagePath   string `json:"image"`
	OwnerID     string `json:"ownerId"`
	OwnerRole   string `json:"ownerRole"`
	UploadedAt  int64  `json:"uploadedAt"`
}

func toDoc(a entity.Artwork) artworkDoc {
	return artworkDoc{
		ID:          a.ID,
		Title:       sanitize.PlainText(a.Title),
		Artist:      a.Artist,
		Description: a.Description,
		PromptText:  sanitize.PlainText(a.PromptText),
		ImagePath:   a.ImagePath,
		OwnerID:     a.Owner(),
		OwnerRole:   string(a.OwnerRole),
		UploadedAt:  a.UploadedAt.UnixMilli(),
	}
}

func (d artworkDoc) artwork() entity.Artwork {
	return entity.Artwork{
		ID:          d.ID,
		Title:       d.Title,
		Artist:      d.Artist,
		Description: d.Description,
		PromptText:  d.PromptText,
		ImagePath:   d.ImagePath,
		OwnerID:     d.OwnerID,
		OwnerRole:   entity.Role(d.OwnerRole),
		UploadedAt:  time.UnixMilli(d.UploadedAt).UTC(),
	}
}

// Index adds or replaces the given artworks.
func (i *Indexer) Index(ctx context.Context, artworks []entity.Artwork) error {
	if len(artworks) == 0 {
		return nil
	}
	docs := make([]artworkDoc, 0, len(artworks))
	for _, a := range artworks {
		docs = append(docs, toDoc(a))
	}

	task, err := i.client.Index(IndexName).AddDocumentsWithContext(ctx, docs, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed %d artworks, task id: %d", len(docs), task.TaskUID)
	return nil
}

// HandleArtworkEvent runs inside the request that changed the gallery, so each
// write is bounded by writeTimeout as well as the caller's context.
func (i *Indexer) HandleArtworkEvent(ctx context.Context, event entity.ArtworkEvent) error {
	ctx, cancel := context.WithTimeout(ctx, i.writeTimeout)
	defer cancel()

	switch event.Type {
	case entity.EventArtworkCreated:
		return i.Index(ctx, event.Artworks)
	case entity.EventArtworkDeleted:
		for _, a := range event.Artworks {
			if _, err := i.client.Index(IndexName).DeleteDocumentWithContext(ctx, a.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

type searchResult struct {
	Hits []artworkDoc `json:"hits"`
}

func (i *Indexer) Search(ctx context.Context, query string, limit int) ([]entity.Artwork, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	raw, err := i.client.Index(IndexName).SearchRawWithContext(ctx, strings.TrimSpace(query), &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search artworks: %w", err)
	}

	var result searchResult
	if raw != nil {
		if err := json.Unmarshal(*raw, &result); err != nil {
			return nil, apperror.Wrap(apperror.ErrFormat, "unreadable search response")
		}
	}

	artworks := make([]entity.Artwork, 0, len(result.Hits))
	for _, hit := range result.Hits {
		artworks = append(artworks, hit.artwork())
	}
	return artworks, nil
}

func strPtr(s string) *string {
	return &s
}
