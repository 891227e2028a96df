package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/edukita/edukita-backend/internal/types"
)

func newOwnershipFixture(t *testing.T) (*fakeUserRepo, *fakeArticleRepo, *fakeEducationRepo, *fakeWorkshopRepo, OwnershipService, *types.User) {
	t.Helper()
	users := newFakeUserRepo()
	articles := newFakeArticleRepo()
	educations := newFakeEducationRepo()
	workshops := newFakeWorkshopRepo()
	svc := NewOwnershipService(nil, testLogger(t), users, articles, educations, workshops)

	owner := &types.User{
		ID:       uuid.New(),
		Username: "owner",
		Email:    "owner@example.com",
		Role:     types.RoleUser,
	}
	users.Create(context.Background(), nil, []*types.User{owner})
	return users, articles, educations, workshops, svc, owner
}

func TestOwnershipAppendAndRemove(t *testing.T) {
	_, _, _, _, svc, owner := newOwnershipFixture(t)
	ctx := context.Background()

	articleID := uuid.New()
	if err := svc.Append(ctx, nil, owner.ID, KindArticle, articleID); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// Appending the same ID twice must not duplicate it.
	if err := svc.Append(ctx, nil, owner.ID, KindArticle, articleID); err != nil {
		t.Fatalf("Append again: %v", err)
	}

	lists, err := svc.Lists(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Lists: %v", err)
	}
	if len(lists[KindArticle]) != 1 || lists[KindArticle][0] != articleID {
		t.Fatalf("article list: want=[%s] got=%v", articleID, lists[KindArticle])
	}

	if err := svc.Remove(ctx, nil, owner.ID, KindArticle, articleID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	// Removing an absent ID is a no-op.
	if err := svc.Remove(ctx, nil, owner.ID, KindArticle, articleID); err != nil {
		t.Fatalf("Remove again: %v", err)
	}

	lists, err = svc.Lists(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Lists: %v", err)
	}
	if len(lists[KindArticle]) != 0 {
		t.Fatalf("article list after remove: want empty got=%v", lists[KindArticle])
	}
}

func TestOwnershipAppendUnknownOwner(t *testing.T) {
	_, _, _, _, svc, _ := newOwnershipFixture(t)
	err := svc.Append(context.Background(), nil, uuid.New(), KindArticle, uuid.New())
	if err == nil {
		t.Fatalf("want error for unknown owner")
	}
}

func TestOwnershipVerify(t *testing.T) {
	users, articles, _, _, svc, owner := newOwnershipFixture(t)
	ctx := context.Background()

	listed := &types.Article{ID: uuid.New(), Title: "listed", AuthorID: owner.ID}
	unlisted := &types.Article{ID: uuid.New(), Title: "unlisted", AuthorID: owner.ID}
	foreign := &types.Article{ID: uuid.New(), Title: "foreign", AuthorID: uuid.New()}
	articles.Create(ctx, nil, []*types.Article{listed, unlisted, foreign})

	dangling := uuid.New()
	owner.ArticleIDs = datatypes.NewJSONSlice([]uuid.UUID{listed.ID, dangling, foreign.ID})
	users.users[owner.ID] = owner

	report, err := svc.Verify(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if report.Consistent() {
		t.Fatalf("report should be inconsistent")
	}
	if len(report.Dangling[KindArticle]) != 2 {
		t.Fatalf("dangling: want=2 got=%v", report.Dangling[KindArticle])
	}
	if len(report.Unlisted[KindArticle]) != 1 || report.Unlisted[KindArticle][0] != unlisted.ID {
		t.Fatalf("unlisted: want=[%s] got=%v", unlisted.ID, report.Unlisted[KindArticle])
	}
}

func TestOwnershipVerifyConsistent(t *testing.T) {
	users, articles, _, _, svc, owner := newOwnershipFixture(t)
	ctx := context.Background()

	a := &types.Article{ID: uuid.New(), Title: "a", AuthorID: owner.ID}
	articles.Create(ctx, nil, []*types.Article{a})
	owner.ArticleIDs = datatypes.NewJSONSlice([]uuid.UUID{a.ID})
	users.users[owner.ID] = owner

	report, err := svc.Verify(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !report.Consistent() {
		t.Fatalf("report should be consistent: %+v", report)
	}
}
