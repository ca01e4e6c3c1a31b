package artwork

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/budhitree/nexus-art-gallery/internal/modules/artwork/dto"
	"github.com/budhitree/nexus-art-gallery/internal/modules/artwork/repository"
	userRepository "github.com/budhitree/nexus-art-gallery/internal/modules/user/repository"
	"github.com/budhitree/nexus-art-gallery/internal/store"
	"github.com/budhitree/nexus-art-gallery/internal/store/storetest"
	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"github.com/budhitree/nexus-art-gallery/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedDoc = `{
  "users": {
    "admin":    {"id": "admin",    "name": "Admin", "userType": "admin",   "password": "x", "joined": "2025-01-01T00:00:00Z", "uploads": []},
    "20250101": {"id": "20250101", "name": "Ana",   "userType": "student", "password": "x", "joined": "2025-01-01T00:00:00Z", "uploads": []},
    "20250102": {"id": "20250102", "name": "Ben",   "userType": "student", "password": "x", "joined": "2025-01-01T00:00:00Z", "uploads": []},
    "1234567":  {"id": "1234567",  "name": "Tia",   "userType": "teacher", "password": "x", "joined": "2025-01-01T00:00:00Z", "uploads": []}
  },
  "artworks": []
}`

type recordingListener struct {
	mu     sync.Mutex
	events []entity.ArtworkEvent
	err    error
}

func (r *recordingListener) HandleArtworkEvent(_ context.Context, event entity.ArtworkEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

type fixture struct {
	svc      ArtworkService
	store    *store.Store
	backend  *storetest.MemoryBackend
	blobs    *storage.LocalStorage
	listener *recordingListener
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	backend := storetest.NewMemoryBackendWith([]byte(seedDoc))
	s, err := store.Open(ctx, backend)
	require.NoError(t, err)

	blobs, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "uploads"), "/uploads")
	require.NoError(t, err)

	clock := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{store: s, backend: backend, blobs: blobs, listener: &recordingListener{}, clock: &clock}
	f.svc = NewArtworkService(
		repository.NewArtworkRepository(s),
		userRepository.NewUserRepository(s),
		blobs,
		WithListener(f.listener),
		WithClock(func() time.Time {
			*f.clock = f.clock.Add(time.Millisecond)
			return *f.clock
		}),
	)
	return f
}

func (f *fixture) upload(t *testing.T, userID, title string) *entity.Artwork {
	t.Helper()
	art, err := f.svc.Upload(context.Background(), dto.UploadInput{
		UserID:     userID,
		Title:      title,
		PromptText: "a prompt",
		File:       strings.NewReader("image-bytes"),
		FileName:   "photo.PNG",
	})
	require.NoError(t, err)
	return art
}

func (f *fixture) doc(t *testing.T) *entity.Document {
	t.Helper()
	doc, err := f.store.Read(context.Background())
	require.NoError(t, err)
	return doc
}

func TestUploadAppendsOneArtworkAndOneUploadID(t *testing.T) {
	f := newFixture(t)
	before := f.backend.Saves()

	art := f.upload(t, "20250101", "")

	assert.Equal(t, before+1, f.backend.Saves())
	assert.Equal(t, "Untitled", art.Title)
	assert.Equal(t, "Student Submission", art.Description)
	assert.Equal(t, "Student_20250101", art.Artist)
	assert.Equal(t, "20250101", art.OwnerID)
	assert.Equal(t, entity.RoleStudent, art.OwnerRole)
	assert.Regexp(t, regexp.MustCompile(`^\d+$`), art.ID)
	assert.Regexp(t, regexp.MustCompile(`^/uploads/\d+-\d+\.PNG$`), art.ImagePath)

	_, err := os.Stat(f.blobs.Path(path.Base(art.ImagePath)))
	assert.NoError(t, err)

	doc := f.doc(t)
	require.Len(t, doc.Artworks, 1)
	assert.Equal(t, []string{art.ID}, doc.Users["20250101"].UploadIDs)
	assert.Empty(t, doc.Users["20250102"].UploadIDs)

	require.Len(t, f.listener.events, 1)
	assert.Equal(t, entity.EventArtworkCreated, f.listener.events[0].Type)
}

func TestUploadForUnknownUserStillAddsArtwork(t *testing.T) {
	f := newFixture(t)
	art := f.upload(t, "ghost", "Night")

	doc := f.doc(t)
	require.Len(t, doc.Artworks, 1)
	assert.Equal(t, "Student_ghost", doc.Artworks[0].Artist)
	assert.Equal(t, "Night", art.Title)
	assert.Empty(t, art.OwnerRole)
}

func TestUploadTeacherKeepsStudentPrefix(t *testing.T) {
	f := newFixture(t)
	art := f.upload(t, "1234567", "Lesson")
	assert.Equal(t, "Student_1234567", art.Artist)
	assert.Equal(t, entity.RoleTeacher, art.OwnerRole)
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, dto.UploadInput{UserID: "20250101"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.Upload(ctx, dto.UploadInput{File: strings.NewReader("x"), FileName: "a.png"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assert.Empty(t, f.doc(t).Artworks)
}

func TestUploadRemovesBlobWhenStoreWriteFails(t *testing.T) {
	f := newFixture(t)
	f.backend.FailSaves(errors.New("disk full"))

	_, err := f.svc.Upload(context.Background(), dto.UploadInput{
		UserID: "20250101", File: strings.NewReader("x"), FileName: "a.png",
	})
	assert.ErrorIs(t, err, apperror.ErrPersistence)

	blobs, err := f.blobs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, blobs)
}

func TestGalleryIsReverseCreationOrder(t *testing.T) {
	f := newFixture(t)
	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		ids = append(ids, f.upload(t, "20250101", title).ID)
	}

	gallery, err := f.svc.ListGallery(context.Background())
	require.NoError(t, err)
	require.Len(t, gallery, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{gallery[0].ID, gallery[1].ID, gallery[2].ID})

	// stored order is untouched
	doc := f.doc(t)
	assert.Equal(t, ids[0], doc.Artworks[0].ID)
}

func TestDeleteByOwner(t *testing.T) {
	f := newFixture(t)
	keep := f.upload(t, "20250101", "keep")
	art := f.upload(t, "20250101", "gone")
	blobFile := f.blobs.Path(path.Base(art.ImagePath))

	require.NoError(t, f.svc.Delete(context.Background(), art.ID, "20250101"))

	doc := f.doc(t)
	require.Len(t, doc.Artworks, 1)
	assert.Equal(t, keep.ID, doc.Artworks[0].ID)
	assert.Equal(t, []string{keep.ID}, doc.Users["20250101"].UploadIDs)
	_, err := os.Stat(blobFile)
	assert.True(t, os.IsNotExist(err))

	last := f.listener.events[len(f.listener.events)-1]
	assert.Equal(t, entity.EventArtworkDeleted, last.Type)
	assert.Equal(t, art.ID, last.Artworks[0].ID)
}

func TestDeleteByNonOwnerIsForbiddenAndChangesNothing(t *testing.T) {
	f := newFixture(t)
	art := f.upload(t, "20250101", "mine")
	saves := f.backend.Saves()

	for _, requester := range []string{"20250102", "1234567"} {
		err := f.svc.Delete(context.Background(), art.ID, requester)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	}

	assert.Equal(t, saves, f.backend.Saves())
	doc := f.doc(t)
	assert.Len(t, doc.Artworks, 1)
	_, err := os.Stat(f.blobs.Path(path.Base(art.ImagePath)))
	assert.NoError(t, err)
}

func TestDeleteByAdminKeepsOwnerUploads(t *testing.T) {
	f := newFixture(t)
	art := f.upload(t, "20250101", "mine")

	require.NoError(t, f.svc.Delete(context.Background(), art.ID, entity.AdminID))

	doc := f.doc(t)
	assert.Empty(t, doc.Artworks)
	assert.Equal(t, []string{art.ID}, doc.Users["20250101"].UploadIDs)
}

func TestDeleteToleratesMissingBlob(t *testing.T) {
	f := newFixture(t)
	art := f.upload(t, "20250101", "x")
	require.NoError(t, os.Remove(f.blobs.Path(path.Base(art.ImagePath))))

	assert.NoError(t, f.svc.Delete(context.Background(), art.ID, "20250101"))
	assert.Empty(t, f.doc(t).Artworks)
}

func TestDeleteErrors(t *testing.T) {
	f := newFixture(t)
	art := f.upload(t, "20250101", "x")

	assert.ErrorIs(t, f.svc.Delete(context.Background(), art.ID, ""), apperror.ErrAuthRequired)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), "missing", "20250101"), apperror.ErrNotFound)
}

func TestDeleteLegacyArtworkMatchedByArtistLabel(t *testing.T) {
	ctx := context.Background()
	backend := storetest.NewMemoryBackendWith([]byte(`{"users":{"20250101":{"id":"20250101","uploads":["7"]}},"artworks":[{"id":"7","title":"old","artist":"Student_20250101","image":"https://cdn.example.com/old.jpg"}]}`))
	s, err := store.Open(ctx, backend)
	require.NoError(t, err)
	blobs, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	svc := NewArtworkService(repository.NewArtworkRepository(s), userRepository.NewUserRepository(s), blobs)

	require.NoError(t, svc.Delete(ctx, "7", "20250101"))

	doc, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Artworks)
	assert.Empty(t, doc.Users["20250101"].UploadIDs)
}

func TestListOwnerIDsExcludesAdmin(t *testing.T) {
	f := newFixture(t)
	ids, err := f.svc.ListOwnerIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567", "20250101", "20250102"}, ids)
}

func TestCommitBatchWritesOnce(t *testing.T) {
	f := newFixture(t)
	before := f.backend.Saves()
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	batch := []entity.Artwork{
		NewArtwork(Draft{ID: "a", OwnerID: "20250102", ImagePath: "/uploads/a.jpg", Description: GeneratedDescription, UploadedAt: at}, DefaultGeneratedTitle),
		NewArtwork(Draft{ID: "b", OwnerID: "20250102", ImagePath: "/uploads/b.jpg", Description: GeneratedDescription, UploadedAt: at}, DefaultGeneratedTitle),
	}
	committed, err := f.svc.Commit(context.Background(), batch)
	require.NoError(t, err)
	assert.Len(t, committed, 2)
	assert.Equal(t, before+1, f.backend.Saves())
	assert.Equal(t, []string{"a", "b"}, f.doc(t).Users["20250102"].UploadIDs)

	_, err = f.svc.Commit(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestFreeFormTextIsStoredAsSent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uploaded, err := f.svc.Upload(ctx, dto.UploadInput{
		UserID:     "20250101",
		Title:      "x < y <b>bold</b>",
		PromptText: "a cat, <lora:style:0.8>, 8k",
		File:       strings.NewReader("image-bytes"),
		FileName:   "photo.png",
	})
	require.NoError(t, err)

	batch := []entity.Artwork{
		NewArtwork(Draft{ID: "g1", OwnerID: "20250102", Title: "<script>t</script>", PromptText: "1 < 2 && 3 > 2", ImagePath: "/uploads/g1.jpg", UploadedAt: *f.clock}, DefaultGeneratedTitle),
	}
	_, err = f.svc.Commit(ctx, batch)
	require.NoError(t, err)

	byID := map[string]entity.Artwork{}
	for _, a := range f.doc(t).Artworks {
		byID[a.ID] = a
	}
	assert.Equal(t, "x < y <b>bold</b>", byID[uploaded.ID].Title)
	assert.Equal(t, "a cat, <lora:style:0.8>, 8k", byID[uploaded.ID].PromptText)
	assert.Equal(t, "<script>t</script>", byID["g1"].Title)
	assert.Equal(t, "1 < 2 && 3 > 2", byID["g1"].PromptText)
}

func TestListenerFailureDoesNotFailUpload(t *testing.T) {
	f := newFixture(t)
	f.listener.err = errors.New("feed down")
	art := f.upload(t, "20250101", "x")
	assert.NotEmpty(t, art.ID)
}

func TestSweepOrphansRemovesOnlyOldUnreferencedBlobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kept := f.upload(t, "20250101", "kept")

	orphanOld := f.blobs.Path("ai_1_old.jpg")
	orphanNew := f.blobs.Path("ai_2_new.jpg")
	require.NoError(t, os.WriteFile(orphanOld, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(orphanNew, []byte("x"), 0o644))

	// the sweep clock is the fixture clock; age the old orphan and the kept blob past the grace
	old := f.clock.Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(orphanOld, old, old))
	require.NoError(t, os.Chtimes(f.blobs.Path(path.Base(kept.ImagePath)), old, old))
	recent := f.clock.Add(-time.Minute)
	require.NoError(t, os.Chtimes(orphanNew, recent, recent))

	removed, err := f.svc.SweepOrphans(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(orphanOld)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(orphanNew)
	assert.NoError(t, err)
	_, err = os.Stat(f.blobs.Path(path.Base(kept.ImagePath)))
	assert.NoError(t, err)
}

func TestFileNames(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	id, name := UploadFileName(now, "cat.jpeg")
	assert.Equal(t, "1700000000123", id)
	assert.Regexp(t, regexp.MustCompile(`^1700000000123-\d{1,9}\.jpeg$`), name)

	id, name = GeneratedFileName(now)
	assert.Regexp(t, regexp.MustCompile(`^1700000000123_[0-9a-z]{9}$`), id)
	assert.Equal(t, "ai_"+id+".jpg", name)
}
