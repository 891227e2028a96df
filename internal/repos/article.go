package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/types"
)

type ArticleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, articles []*types.Article) ([]*types.Article, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, articleIDs []uuid.UUID) ([]*types.Article, error)
	GetByAuthorIDs(ctx context.Context, tx *gorm.DB, authorIDs []uuid.UUID) ([]*types.Article, error)
	GetLatest(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Article, error)
	SearchByTitle(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Article, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, articleID uuid.UUID, fields map[string]interface{}) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, articleIDs []uuid.UUID) error
}

type articleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArticleRepo(db *gorm.DB, baseLog *logger.Logger) ArticleRepo {
	repoLog := baseLog.With("repo", "ArticleRepo")
	return &articleRepo{db: db, log: repoLog}
}

func (r *articleRepo) Create(ctx context.Context, tx *gorm.DB, articles []*types.Article) ([]*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(articles) == 0 {
		return []*types.Article{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *articleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, articleIDs []uuid.UUID) ([]*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Article
	if len(articleIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", articleIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *articleRepo) GetByAuthorIDs(ctx context.Context, tx *gorm.DB, authorIDs []uuid.UUID) ([]*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Article
	if len(authorIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *articleRepo) GetLatest(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Article
	if err := transaction.WithContext(ctx).
		Order("publication_date DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *articleRepo) SearchByTitle(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Article
	if query == "" {
		return results, nil
	}

	q := transaction.WithContext(ctx).
		Where("title ILIKE ?", "%"+query+"%")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *articleRepo) UpdateFields(ctx context.Context, tx *gorm.DB, articleID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Article{}).
		Where("id = ?", articleID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *articleRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, articleIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(articleIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", articleIDs).
		Delete(&types.Article{}).Error; err != nil {
		return err
	}
	return nil
}
