package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/edukita/edukita-backend/internal/requestdata"
	"github.com/edukita/edukita-backend/internal/types"
)

type articleFixture struct {
	users    *fakeUserRepo
	articles *fakeArticleRepo
	bucket   *fakeBucket
	svc      ArticleService

	author *types.User
}

func newArticleFixture(t *testing.T) *articleFixture {
	t.Helper()
	f := &articleFixture{
		users:    newFakeUserRepo(),
		articles: newFakeArticleRepo(),
		bucket:   newFakeBucket(),
	}
	educations := newFakeEducationRepo()
	workshops := newFakeWorkshopRepo()
	log := testLogger(t)
	ownership := NewOwnershipService(nil, log, f.users, f.articles, educations, workshops)
	f.svc = NewArticleService(nil, log, f.articles, ownership, f.bucket)

	f.author = &types.User{
		ID:       uuid.New(),
		Username: "author",
		Email:    "author@example.com",
		Role:     types.RoleUser,
	}
	f.users.Create(context.Background(), nil, []*types.User{f.author})
	return f
}

func (f *articleFixture) ctxAs(user *types.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: user.ID,
		Role:   user.Role,
	})
}

func upload(name string) *UploadedFile {
	return &UploadedFile{
		Name:        name,
		ContentType: "application/octet-stream",
		Reader:      strings.NewReader("payload"),
	}
}

func TestArticleCreate(t *testing.T) {
	f := newArticleFixture(t)
	ctx := f.ctxAs(f.author)

	article, err := f.svc.Create(ctx, "  My Article  ", upload("cover.png"), upload("body.md"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if article.Title != "My Article" {
		t.Fatalf("title: want=%q got=%q", "My Article", article.Title)
	}
	if article.AuthorID != f.author.ID {
		t.Fatalf("author: want=%s got=%s", f.author.ID, article.AuthorID)
	}
	if article.Image.Path == "" || article.Content.Path == "" {
		t.Fatalf("asset paths not set: %+v", article)
	}
	if !f.bucket.has(article.Image.Path) || !f.bucket.has(article.Content.Path) {
		t.Fatalf("assets not uploaded")
	}
	// Registry updated.
	if len(f.users.users[f.author.ID].ArticleIDs) != 1 {
		t.Fatalf("article not appended to registry")
	}
}

func TestArticleCreateRequiresTitleAndFiles(t *testing.T) {
	f := newArticleFixture(t)
	ctx := f.ctxAs(f.author)

	if _, err := f.svc.Create(ctx, "", upload("cover.png"), upload("body.md")); err == nil {
		t.Fatalf("want error for empty title")
	}
	if _, err := f.svc.Create(ctx, "Title", nil, upload("body.md")); err == nil {
		t.Fatalf("want error for missing image")
	}
}

func TestArticleUpdateReplacesAssetDeleteFirst(t *testing.T) {
	f := newArticleFixture(t)
	ctx := f.ctxAs(f.author)

	article, err := f.svc.Create(ctx, "Title", upload("cover.png"), upload("body.md"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	oldImage := article.Image.Path
	f.bucket.ops = nil

	updated, err := f.svc.Update(ctx, article.ID, "", upload("new-cover.png"), nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Image.Path == oldImage {
		t.Fatalf("image path unchanged after replacement")
	}
	if f.bucket.has(oldImage) {
		t.Fatalf("old image still present")
	}
	// Old object removed before the new one was written.
	if len(f.bucket.ops) != 2 || f.bucket.ops[0] != "delete:"+oldImage {
		t.Fatalf("ops order: want delete-then-upload got=%v", f.bucket.ops)
	}
}

func TestArticleUpdateAbortsWhenOldAssetDeleteFails(t *testing.T) {
	f := newArticleFixture(t)
	ctx := f.ctxAs(f.author)

	article, err := f.svc.Create(ctx, "Title", upload("cover.png"), upload("body.md"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.bucket.failKeys[article.Image.Path] = true
	f.bucket.ops = nil

	if _, err := f.svc.Update(ctx, article.ID, "", upload("new-cover.png"), nil); err == nil {
		t.Fatalf("want error when old asset delete fails")
	}
	// Nothing new was uploaded.
	for _, op := range f.bucket.ops {
		if strings.HasPrefix(op, "upload:") {
			t.Fatalf("replacement uploaded despite failed delete: %v", f.bucket.ops)
		}
	}
}

func TestArticleDelete(t *testing.T) {
	f := newArticleFixture(t)
	ctx := f.ctxAs(f.author)

	article, err := f.svc.Create(ctx, "Title", upload("cover.png"), upload("body.md"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.svc.Delete(ctx, article.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := f.articles.articles[article.ID]; ok {
		t.Fatalf("article record still present")
	}
	if f.bucket.has(article.Image.Path) || f.bucket.has(article.Content.Path) {
		t.Fatalf("assets still present")
	}
	if len(f.users.users[f.author.ID].ArticleIDs) != 0 {
		t.Fatalf("registry entry still present")
	}
}

func TestArticleDeleteForbiddenForNonOwner(t *testing.T) {
	f := newArticleFixture(t)
	ctx := f.ctxAs(f.author)

	article, err := f.svc.Create(ctx, "Title", upload("cover.png"), upload("body.md"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.bucket.ops = nil

	stranger := &types.User{ID: uuid.New(), Role: types.RoleAdmin}
	err = f.svc.Delete(f.ctxAs(stranger), article.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if _, ok := f.articles.articles[article.ID]; !ok {
		t.Fatalf("article removed by non-owner")
	}
	if len(f.bucket.ops) != 0 {
		t.Fatalf("assets touched by non-owner: %v", f.bucket.ops)
	}
}

func TestArticleDeleteNotFound(t *testing.T) {
	f := newArticleFixture(t)
	err := f.svc.Delete(f.ctxAs(f.author), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
