package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeMeili answers just enough of the meilisearch API for the indexer.
type fakeMeili struct {
	mu       sync.Mutex
	requests []recordedRequest
	hits     string
	delay    time.Duration
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if strings.HasSuffix(r.URL.Path, "/search") {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"hits":`+f.hits+`,"query":"sunset","limit":20,"offset":0,"estimatedTotalHits":1,"processingTimeMs":1}`)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, `{"taskUid":1,"indexUid":"artworks","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":"2025-01-01T00:00:00Z"}`)
}

func (f *fakeMeili) find(method, path string) *recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.requests {
		if f.requests[i].Method == method && f.requests[i].Path == path {
			return &f.requests[i]
		}
	}
	return nil
}

func newIndexer(t *testing.T, hits string) (*Indexer, *fakeMeili) {
	t.Helper()
	fake := &fakeMeili{hits: hits}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewIndexer(meilisearch.New(srv.URL)), fake
}

func TestIndexerIndexesCreatedArtworks(t *testing.T) {
	idx, fake := newIndexer(t, "[]")

	err := idx.HandleArtworkEvent(context.Background(), entity.ArtworkEvent{
		Type: entity.EventArtworkCreated,
		Artworks: []entity.Artwork{{
			ID:         "1714564800000",
			Title:      "<b>Sunset</b>",
			Artist:     "Student_20250101",
			PromptText: "a red sunset",
			ImagePath:  "/uploads/1714564800000-1.png",
			OwnerID:    "20250101",
			OwnerRole:  entity.RoleStudent,
			UploadedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		}},
	})
	require.NoError(t, err)

	req := fake.find(http.MethodPost, "/indexes/artworks/documents")
	require.NotNil(t, req)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "Sunset", docs[0]["title"])
	assert.Equal(t, "20250101", docs[0]["ownerId"])
	assert.Equal(t, "student", docs[0]["ownerRole"])
}

func TestIndexerDeletesRemovedArtworks(t *testing.T) {
	idx, fake := newIndexer(t, "[]")

	err := idx.HandleArtworkEvent(context.Background(), entity.ArtworkEvent{
		Type:     entity.EventArtworkDeleted,
		Artworks: []entity.Artwork{{ID: "42"}},
	})
	require.NoError(t, err)
	assert.NotNil(t, fake.find(http.MethodDelete, "/indexes/artworks/documents/42"))
}

func TestIndexerSearchDecodesHits(t *testing.T) {
	idx, _ := newIndexer(t, `[{"id":"1","title":"Sunset","artist":"Student_20250101","ownerId":"20250101","ownerRole":"student","image":"/uploads/1.png","uploadedAt":1746100800000}]`)

	artworks, err := idx.Search(context.Background(), "sunset", 0)
	require.NoError(t, err)
	require.Len(t, artworks, 1)
	assert.Equal(t, "Sunset", artworks[0].Title)
	assert.Equal(t, entity.RoleStudent, artworks[0].OwnerRole)
	assert.Equal(t, time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), artworks[0].UploadedAt)
}

func TestIndexerWritesGiveUpOnSlowServer(t *testing.T) {
	idx, fake := newIndexer(t, "[]")
	fake.delay = 5 * time.Second
	idx.writeTimeout = 50 * time.Millisecond

	start := time.Now()
	err := idx.HandleArtworkEvent(context.Background(), entity.ArtworkEvent{
		Type:     entity.EventArtworkCreated,
		Artworks: []entity.Artwork{{ID: "1"}},
	})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestIndexerWritesStopWhenCallerCancels(t *testing.T) {
	idx, fake := newIndexer(t, "[]")
	fake.delay = 5 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	err := idx.HandleArtworkEvent(ctx, entity.ArtworkEvent{
		Type:     entity.EventArtworkDeleted,
		Artworks: []entity.Artwork{{ID: "42"}},
	})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

type stubSearcher struct {
	query string
	limit int
}

func (s *stubSearcher) Search(_ context.Context, query string, limit int) ([]entity.Artwork, error) {
	s.query, s.limit = query, limit
	return []entity.Artwork{{ID: "1"}}, nil
}

func get(h *SearchHandler, url string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/gallery/search", h.Search)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, url, nil))
	return resp
}

func TestSearchHandler(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		resp := get(NewSearchHandler(nil), "/api/gallery/search?q=cat")
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})

	t.Run("missing query", func(t *testing.T) {
		resp := get(NewSearchHandler(&stubSearcher{}), "/api/gallery/search")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("ok", func(t *testing.T) {
		stub := &stubSearcher{}
		resp := get(NewSearchHandler(stub), "/api/gallery/search?q=cat&limit=5")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "cat", stub.query)
		assert.Equal(t, 5, stub.limit)
		assert.Contains(t, resp.Body.String(), `"success":true`)
	})
}
