package material

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/studyhub/studyhub-api/internal/domain/user"
)

type fakeRepo struct {
	created       []*Material
	createErr     error
	downloads     int
	thumbnailURLs []string
}

func (f *fakeRepo) Create(ctx context.Context, m *Material) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, m)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Material, error) {
	for _, m := range f.created {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, ErrMaterialNotFound
}

func (f *fakeRepo) GetListItem(ctx context.Context, id uuid.UUID) (*ListItem, error) {
	m, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ListItem{Material: *m, UploaderName: "Test User"}, nil
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) ([]*ListItem, error) {
	items := make([]*ListItem, 0, len(f.created))
	for _, m := range f.created {
		items = append(items, &ListItem{Material: *m, UploaderName: "Test User"})
	}
	return items, nil
}

func (f *fakeRepo) Count(ctx context.Context, filter ListFilter) (int, error) {
	return len(f.created), nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Material, error) {
	return f.created, nil
}

func (f *fakeRepo) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	f.downloads++
	return nil
}

func (f *fakeRepo) UpdateThumbnail(ctx context.Context, id uuid.UUID, thumbnailURL string) error {
	f.thumbnailURLs = append(f.thumbnailURLs, thumbnailURL)
	return nil
}

type fakeUserRepo struct {
	u             *user.User
	addCreditsErr error
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if f.u == nil || f.u.ID != id {
		return nil, user.ErrUserNotFound
	}
	return f.u, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}
func (f *fakeUserRepo) GetCredits(ctx context.Context, id uuid.UUID) (int, error) {
	return f.u.Credits, nil
}
func (f *fakeUserRepo) AddCredits(ctx context.Context, id uuid.UUID, amount int) error {
	if f.addCreditsErr != nil {
		return f.addCreditsErr
	}
	f.u.Credits += amount
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Save(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStorage) GetURL(key string) string { return "http://files.test/" + key }

type fakeAccess struct {
	allow bool
	err   error
}

func (f *fakeAccess) HasAccess(ctx context.Context, userID, materialID uuid.UUID) (bool, error) {
	return f.allow, f.err
}

func newTestUser(credits int) *user.User {
	now := time.Now()
	return &user.User{
		ID:           uuid.New(),
		Email:        "student@test.edu",
		PasswordHash: "hash",
		Name:         "Test Student",
		Role:         user.RoleStudent,
		Credits:      credits,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newUploadRequest() *UploadRequest {
	return &UploadRequest{
		Title: "Linear Algebra Notes",
		Type:  string(TypeNotes),
		Price: 3,
	}
}

func TestUploadFileGrantsReward(t *testing.T) {
	u := newTestUser(10)
	repo := &fakeRepo{}
	users := &fakeUserRepo{u: u}
	store := newFakeStorage()
	svc := NewService(repo, users, nil, store, nil, 1, 1<<20)

	file := strings.NewReader("lecture notes on eigenvalues and eigenvectors")
	resp, err := svc.Upload(context.Background(), u.ID, newUploadRequest(), file, "notes.txt")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if !resp.RewardGranted {
		t.Fatal("expected reward granted")
	}
	if resp.Credits != 11 {
		t.Fatalf("expected balance 11 after reward, got %d", resp.Credits)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 record, got %d", len(repo.created))
	}
	if len(store.objects) != 1 {
		t.Fatalf("expected 1 stored object, got %d", len(store.objects))
	}

	m := repo.created[0]
	if !m.FileKey.Valid || m.Content.Valid {
		t.Fatalf("file upload must set file_key only: file=%v content=%v", m.FileKey.Valid, m.Content.Valid)
	}
	if _, ok := store.objects[m.FileKey.String]; !ok {
		t.Fatalf("record key %q does not match the stored object", m.FileKey.String)
	}
	if m.Price != 3 {
		t.Fatalf("expected price 3, got %d", m.Price)
	}
	if resp.Material.HasFile != true {
		t.Fatal("expected has_file true")
	}
}

func TestUploadInlineContent(t *testing.T) {
	u := newTestUser(0)
	repo := &fakeRepo{}
	store := newFakeStorage()
	svc := NewService(repo, &fakeUserRepo{u: u}, nil, store, nil, 1, 1<<20)

	req := newUploadRequest()
	req.Content = "Integration by parts: u dv = uv - v du"
	resp, err := svc.Upload(context.Background(), u.ID, req, nil, "")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if len(store.objects) != 0 {
		t.Fatal("inline upload must not touch the object store")
	}
	m := repo.created[0]
	if !m.Content.Valid || m.FileKey.Valid {
		t.Fatalf("inline upload must set content only: file=%v content=%v", m.FileKey.Valid, m.Content.Valid)
	}
	if !resp.RewardGranted {
		t.Fatal("expected reward granted")
	}
}

func TestUploadNoContent(t *testing.T) {
	u := newTestUser(0)
	svc := NewService(&fakeRepo{}, &fakeUserRepo{u: u}, nil, newFakeStorage(), nil, 1, 1<<20)

	_, err := svc.Upload(context.Background(), u.ID, newUploadRequest(), nil, "")
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestUploadStorageFailureAbortsBeforeRecord(t *testing.T) {
	u := newTestUser(10)
	repo := &fakeRepo{}
	store := newFakeStorage()
	store.saveErr = errors.New("bucket unavailable")
	users := &fakeUserRepo{u: u}
	svc := NewService(repo, users, nil, store, nil, 1, 1<<20)

	file := strings.NewReader("some notes")
	_, err := svc.Upload(context.Background(), u.ID, newUploadRequest(), file, "notes.txt")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}

	if len(repo.created) != 0 {
		t.Fatal("no record may exist after a storage failure")
	}
	if u.Credits != 10 {
		t.Fatalf("no reward on failed upload, balance %d", u.Credits)
	}
}

func TestUploadRecordFailureLeavesOrphan(t *testing.T) {
	u := newTestUser(10)
	repo := &fakeRepo{createErr: errors.New("insert failed")}
	store := newFakeStorage()
	svc := NewService(repo, &fakeUserRepo{u: u}, nil, store, nil, 1, 1<<20)

	file := strings.NewReader("some notes")
	_, err := svc.Upload(context.Background(), u.ID, newUploadRequest(), file, "notes.txt")
	if !errors.Is(err, ErrRecord) {
		t.Fatalf("expected ErrRecord, got %v", err)
	}

	// The stored object stays behind; only the record failed.
	if len(store.objects) != 1 {
		t.Fatalf("expected orphaned object, got %d objects", len(store.objects))
	}
	if u.Credits != 10 {
		t.Fatalf("no reward on failed upload, balance %d", u.Credits)
	}
}

func TestUploadRewardFailureIsNonFatal(t *testing.T) {
	u := newTestUser(10)
	repo := &fakeRepo{}
	users := &fakeUserRepo{u: u, addCreditsErr: errors.New("deadlock")}
	svc := NewService(repo, users, nil, newFakeStorage(), nil, 1, 1<<20)

	file := strings.NewReader("some notes")
	resp, err := svc.Upload(context.Background(), u.ID, newUploadRequest(), file, "notes.txt")
	if err != nil {
		t.Fatalf("upload must survive a reward failure: %v", err)
	}

	if resp.RewardGranted {
		t.Fatal("expected reward_granted false")
	}
	if len(repo.created) != 1 {
		t.Fatal("material must be kept when the reward fails")
	}
}

func TestDownloadDeniedWithoutAccess(t *testing.T) {
	u := newTestUser(10)
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeUserRepo{u: u}, nil, newFakeStorage(), nil, 1, 1<<20)
	svc.SetAccessChecker(&fakeAccess{allow: false})

	file := strings.NewReader("paid notes")
	resp, err := svc.Upload(context.Background(), u.ID, newUploadRequest(), file, "notes.txt")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	_, err = svc.Download(context.Background(), uuid.New(), resp.Material.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.downloads != 0 {
		t.Fatal("denied download must not bump the counter")
	}
}

func TestDownloadCountsAndReturnsURL(t *testing.T) {
	u := newTestUser(10)
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeUserRepo{u: u}, nil, newFakeStorage(), nil, 1, 1<<20)
	svc.SetAccessChecker(&fakeAccess{allow: true})

	file := strings.NewReader("paid notes")
	uploaded, err := svc.Upload(context.Background(), u.ID, newUploadRequest(), file, "notes.txt")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	dl, err := svc.Download(context.Background(), uuid.New(), uploaded.Material.ID)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	key := repo.created[0].FileKey.String
	if dl.URL != "http://files.test/"+key {
		t.Fatalf("expected URL resolved from key %q, got %q", key, dl.URL)
	}
	if repo.downloads != 1 {
		t.Fatalf("expected 1 counted download, got %d", repo.downloads)
	}
}

func TestDownloadMissingObject(t *testing.T) {
	u := newTestUser(10)
	repo := &fakeRepo{}
	store := newFakeStorage()
	svc := NewService(repo, &fakeUserRepo{u: u}, nil, store, nil, 1, 1<<20)
	svc.SetAccessChecker(&fakeAccess{allow: true})

	file := strings.NewReader("some notes")
	uploaded, err := svc.Upload(context.Background(), u.ID, newUploadRequest(), file, "notes.txt")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	// The record survives but the object was removed out of band.
	store.Delete(context.Background(), repo.created[0].FileKey.String)

	_, err = svc.Download(context.Background(), u.ID, uploaded.Material.ID)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent for a missing object, got %v", err)
	}
	if repo.downloads != 0 {
		t.Fatal("failed download must not bump the counter")
	}
}

func TestResponseOmitsFileLocation(t *testing.T) {
	u := newTestUser(10)
	repo := &fakeRepo{}
	store := newFakeStorage()
	svc := NewService(repo, &fakeUserRepo{u: u}, nil, store, nil, 1, 1<<20)

	req := newUploadRequest()
	req.Price = 5
	file := strings.NewReader("paid exam answers")
	uploaded, err := svc.Upload(context.Background(), u.ID, req, file, "exam.txt")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	raw, err := json.Marshal(uploaded.Material)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	key := repo.created[0].FileKey.String
	if strings.Contains(string(raw), key) || strings.Contains(string(raw), "files.test") {
		t.Fatalf("catalog shape must not carry the file location: %s", raw)
	}
	if !uploaded.Material.HasFile {
		t.Fatal("expected has_file true")
	}
}
