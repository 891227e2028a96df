package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/storage"
	"github.com/edukita/edukita-backend/internal/types"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

// ---- user repo ----

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*types.User

	deleteErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*types.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range users {
		f.users[u.ID] = u
	}
	return users, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.User
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.User
	for _, email := range emails {
		for _, u := range f.users {
			if u.Email == email {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByUsernames(ctx context.Context, tx *gorm.DB, usernames []string) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.User
	for _, name := range usernames {
		for _, u := range f.users {
			if u.Username == name {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByRole(ctx context.Context, tx *gorm.DB, role string) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.User
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUserRepo) SearchByUsername(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.User
	for _, u := range f.users {
		if query != "" && strings.Contains(u.Username, query) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUserRepo) UsernameOrEmailExists(ctx context.Context, tx *gorm.DB, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	for key, val := range fields {
		switch key {
		case "username":
			u.Username = val.(string)
		case "role":
			u.Role = val.(string)
		case "article_ids":
			u.ArticleIDs = val.(datatypes.JSONSlice[uuid.UUID])
		case "education_ids":
			u.EducationIDs = val.(datatypes.JSONSlice[uuid.UUID])
		case "workshop_ids":
			u.WorkshopIDs = val.(datatypes.JSONSlice[uuid.UUID])
		}
	}
	return nil
}

func (f *fakeUserRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range userIDs {
		delete(f.users, id)
	}
	return nil
}

// ---- article repo ----

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[uuid.UUID]*types.Article

	getErr    error
	deleteErr error
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: map[uuid.UUID]*types.Article{}}
}

func (f *fakeArticleRepo) Create(ctx context.Context, tx *gorm.DB, articles []*types.Article) ([]*types.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range articles {
		f.articles[a.ID] = a
	}
	return articles, nil
}

func (f *fakeArticleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Article, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Article
	for _, id := range ids {
		if a, ok := f.articles[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeArticleRepo) GetByAuthorIDs(ctx context.Context, tx *gorm.DB, authorIDs []uuid.UUID) ([]*types.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Article
	for _, authorID := range authorIDs {
		for _, a := range f.articles {
			if a.AuthorID == authorID {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (f *fakeArticleRepo) GetLatest(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Article
	for _, a := range f.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublicationDate.After(out[j].PublicationDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeArticleRepo) SearchByTitle(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Article
	for _, a := range f.articles {
		if query != "" && strings.Contains(strings.ToLower(a.Title), strings.ToLower(query)) {
			out = append(out, a)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeArticleRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[id]; !ok {
		return fmt.Errorf("article %s not found", id)
	}
	return nil
}

func (f *fakeArticleRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.articles, id)
	}
	return nil
}

// ---- education repo ----

type fakeEducationRepo struct {
	mu         sync.Mutex
	educations map[uuid.UUID]*types.Education
}

func newFakeEducationRepo() *fakeEducationRepo {
	return &fakeEducationRepo{educations: map[uuid.UUID]*types.Education{}}
}

func (f *fakeEducationRepo) Create(ctx context.Context, tx *gorm.DB, educations []*types.Education) ([]*types.Education, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range educations {
		f.educations[e.ID] = e
	}
	return educations, nil
}

func (f *fakeEducationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Education, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Education
	for _, id := range ids {
		if e, ok := f.educations[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEducationRepo) GetByAuthorIDs(ctx context.Context, tx *gorm.DB, authorIDs []uuid.UUID) ([]*types.Education, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Education
	for _, authorID := range authorIDs {
		for _, e := range f.educations {
			if e.AuthorID == authorID {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeEducationRepo) GetLatest(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Education, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Education
	for _, e := range f.educations {
		out = append(out, e)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEducationRepo) SearchByTitle(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Education, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Education
	for _, e := range f.educations {
		if query != "" && strings.Contains(strings.ToLower(e.Title), strings.ToLower(query)) {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEducationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return nil
}

func (f *fakeEducationRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.educations, id)
	}
	return nil
}

// ---- workshop repo ----

type fakeWorkshopRepo struct {
	mu        sync.Mutex
	workshops map[uuid.UUID]*types.Workshop
}

func newFakeWorkshopRepo() *fakeWorkshopRepo {
	return &fakeWorkshopRepo{workshops: map[uuid.UUID]*types.Workshop{}}
}

func (f *fakeWorkshopRepo) Create(ctx context.Context, tx *gorm.DB, workshops []*types.Workshop) ([]*types.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range workshops {
		f.workshops[w.ID] = w
	}
	return workshops, nil
}

func (f *fakeWorkshopRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Workshop
	for _, id := range ids {
		if w, ok := f.workshops[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWorkshopRepo) GetByAuthorIDs(ctx context.Context, tx *gorm.DB, authorIDs []uuid.UUID) ([]*types.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Workshop
	for _, authorID := range authorIDs {
		for _, w := range f.workshops {
			if w.AuthorID == authorID {
				out = append(out, w)
			}
		}
	}
	return out, nil
}

func (f *fakeWorkshopRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Workshop
	for _, w := range f.workshops {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeWorkshopRepo) SearchByTitle(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Workshop
	for _, w := range f.workshops {
		if query != "" && strings.Contains(strings.ToLower(w.Title), strings.ToLower(query)) {
			out = append(out, w)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeWorkshopRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workshops[id]
	if !ok {
		return fmt.Errorf("workshop %s not found", id)
	}
	if val, present := fields["participants"]; present {
		w.Participants = val.(datatypes.JSONSlice[uuid.UUID])
	}
	return nil
}

func (f *fakeWorkshopRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.workshops, id)
	}
	return nil
}

// ---- bucket ----

// fakeBucket records every operation in order and can be told to fail or
// report not-found for specific keys.
type fakeBucket struct {
	mu       sync.Mutex
	objects  map[string]bool
	ops      []string
	failKeys map[string]bool
	goneKeys map[string]bool
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{
		objects:  map[string]bool{},
		failKeys: map[string]bool{},
		goneKeys: map[string]bool{},
	}
}

func (f *fakeBucket) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[key] {
		return fmt.Errorf("upload failed for %s", key)
	}
	f.objects[key] = true
	f.ops = append(f.ops, "upload:"+key)
	return nil
}

func (f *fakeBucket) DeleteFile(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[key] {
		return fmt.Errorf("delete failed for %s", key)
	}
	if f.goneKeys[key] {
		return fmt.Errorf("object %s: %w", key, gcs.ErrObjectNotExist)
	}
	delete(f.objects, key)
	f.ops = append(f.ops, "delete:"+key)
	return nil
}

func (f *fakeBucket) DeleteFiles(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := f.DeleteFile(ctx, key); err != nil {
			if storage.IsNotFound(err) {
				continue
			}
			return err
		}
	}
	return nil
}

func (f *fakeBucket) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (f *fakeBucket) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key]
}

// ---- delete guard ----

type fakeGuard struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool

	acquires int
	releases int
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{held: map[uuid.UUID]bool{}}
}

func (f *fakeGuard) Acquire(ctx context.Context, targetID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquires++
	if f.held[targetID] {
		return false, nil
	}
	f.held[targetID] = true
	return true, nil
}

func (f *fakeGuard) Release(ctx context.Context, targetID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
	delete(f.held, targetID)
	return nil
}
