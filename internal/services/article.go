package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/normalization"
	"github.com/edukita/edukita-backend/internal/repos"
	"github.com/edukita/edukita-backend/internal/requestdata"
	"github.com/edukita/edukita-backend/internal/storage"
	"github.com/edukita/edukita-backend/internal/types"
)

const latestLimit = 4
const searchLimit = 4

type ArticleService interface {
	Create(ctx context.Context, title string, image, content *UploadedFile) (*types.Article, error)
	GetByID(ctx context.Context, articleID uuid.UUID) (*types.Article, error)
	GetLatest(ctx context.Context) ([]*types.Article, error)
	GetOwn(ctx context.Context) ([]*types.Article, error)
	Search(ctx context.Context, query string) ([]*types.Article, error)
	Update(ctx context.Context, articleID uuid.UUID, title string, image, content *UploadedFile) (*types.Article, error)
	Delete(ctx context.Context, articleID uuid.UUID) error
}

type articleService struct {
	db          *gorm.DB
	log         *logger.Logger
	articleRepo repos.ArticleRepo
	ownership   OwnershipService
	bucket      storage.BucketService
}

func NewArticleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	articleRepo repos.ArticleRepo,
	ownership OwnershipService,
	bucket storage.BucketService,
) ArticleService {
	serviceLog := baseLog.With("service", "ArticleService")
	return &articleService{
		db:          db,
		log:         serviceLog,
		articleRepo: articleRepo,
		ownership:   ownership,
		bucket:      bucket,
	}
}

func (as *articleService) Create(ctx context.Context, title string, image, content *UploadedFile) (*types.Article, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	title = normalization.TrimInputString(title)
	if title == "" {
		return nil, fmt.Errorf("a title is required")
	}
	if image == nil || content == nil {
		return nil, fmt.Errorf("an image and a content file are required")
	}

	imageRef, err := uploadAsset(ctx, as.bucket, assetPrefixImage, image)
	if err != nil {
		return nil, err
	}
	contentRef, err := uploadAsset(ctx, as.bucket, assetPrefixArticle, content)
	if err != nil {
		return nil, err
	}

	article := &types.Article{
		ID:              uuid.New(),
		Title:           title,
		AuthorID:        rd.UserID,
		Image:           imageRef,
		Content:         contentRef,
		PublicationDate: time.Now(),
	}
	if _, err := as.articleRepo.Create(ctx, nil, []*types.Article{article}); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	// Registry append after persist. A failure here leaves the record
	// without a registry entry; the record is not rolled back.
	if err := as.ownership.Append(ctx, nil, rd.UserID, KindArticle, article.ID); err != nil {
		as.log.Warn("Failed to append article to ownership registry",
			"article_id", article.ID, "owner_id", rd.UserID, "error", err)
	}
	return article, nil
}

func (as *articleService) GetByID(ctx context.Context, articleID uuid.UUID) (*types.Article, error) {
	articles, err := as.articleRepo.GetByIDs(ctx, nil, []uuid.UUID{articleID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch article: %w", err)
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("article %s: %w", articleID, ErrNotFound)
	}
	return articles[0], nil
}

func (as *articleService) GetLatest(ctx context.Context) ([]*types.Article, error) {
	return as.articleRepo.GetLatest(ctx, nil, latestLimit)
}

func (as *articleService) GetOwn(ctx context.Context) ([]*types.Article, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	lists, err := as.ownership.Lists(ctx, rd.UserID)
	if err != nil {
		return nil, err
	}
	return as.articleRepo.GetByIDs(ctx, nil, lists[KindArticle])
}

func (as *articleService) Search(ctx context.Context, query string) ([]*types.Article, error) {
	return as.articleRepo.SearchByTitle(ctx, nil, normalization.TrimInputString(query), searchLimit)
}

func (as *articleService) Update(ctx context.Context, articleID uuid.UUID, title string, image, content *UploadedFile) (*types.Article, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}

	article, err := as.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !Allowed(ActionContentMutate, rd.UserID, rd.Role, article.AuthorID) {
		return nil, fmt.Errorf("user %s does not own article %s: %w", rd.UserID, articleID, ErrForbidden)
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if title = normalization.TrimInputString(title); title != "" {
		article.Title = title
		fields["title"] = title
	}

	if image != nil {
		newRef, err := replaceAsset(ctx, as.bucket, article.Image, assetPrefixImage, image)
		if err != nil {
			return nil, err
		}
		article.Image = newRef
		fields["image_path"] = newRef.Path
		fields["image_url"] = newRef.URL
	}
	if content != nil {
		newRef, err := replaceAsset(ctx, as.bucket, article.Content, assetPrefixArticle, content)
		if err != nil {
			return nil, err
		}
		article.Content = newRef
		fields["content_path"] = newRef.Path
		fields["content_url"] = newRef.URL
	}

	if err := as.articleRepo.UpdateFields(ctx, nil, articleID, fields); err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	return article, nil
}

func (as *articleService) Delete(ctx context.Context, articleID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("request data not set in context")
	}

	article, err := as.GetByID(ctx, articleID)
	if err != nil {
		return err
	}
	// Ownership is checked before anything is removed so a forbidden
	// request leaves both the record and its assets untouched.
	if !Allowed(ActionContentMutate, rd.UserID, rd.Role, article.AuthorID) {
		return fmt.Errorf("user %s does not own article %s: %w", rd.UserID, articleID, ErrForbidden)
	}

	for _, asset := range article.Assets() {
		if asset.Path == "" {
			continue
		}
		if err := as.bucket.DeleteFile(ctx, asset.Path); err != nil && !storage.IsNotFound(err) {
			return fmt.Errorf("failed to delete article asset %q: %w", asset.Path, ErrRemoteFailure)
		}
	}

	if err := as.articleRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{articleID}); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if err := as.ownership.Remove(ctx, nil, article.AuthorID, KindArticle, articleID); err != nil {
		as.log.Warn("Failed to remove article from ownership registry",
			"article_id", articleID, "owner_id", article.AuthorID, "error", err)
	}
	return nil
}
