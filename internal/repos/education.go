package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/types"
)

type EducationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, educations []*types.Education) ([]*types.Education, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, educationIDs []uuid.UUID) ([]*types.Education, error)
	GetByAuthorIDs(ctx context.Context, tx *gorm.DB, authorIDs []uuid.UUID) ([]*types.Education, error)
	GetLatest(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Education, error)
	SearchByTitle(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Education, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, educationID uuid.UUID, fields map[string]interface{}) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, educationIDs []uuid.UUID) error
}

type educationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEducationRepo(db *gorm.DB, baseLog *logger.Logger) EducationRepo {
	repoLog := baseLog.With("repo", "EducationRepo")
	return &educationRepo{db: db, log: repoLog}
}

func (r *educationRepo) Create(ctx context.Context, tx *gorm.DB, educations []*types.Education) ([]*types.Education, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(educations) == 0 {
		return []*types.Education{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&educations).Error; err != nil {
		return nil, err
	}
	return educations, nil
}

func (r *educationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, educationIDs []uuid.UUID) ([]*types.Education, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Education
	if len(educationIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", educationIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *educationRepo) GetByAuthorIDs(ctx context.Context, tx *gorm.DB, authorIDs []uuid.UUID) ([]*types.Education, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Education
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

func (r *educationRepo) GetLatest(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Education, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Education
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *educationRepo) SearchByTitle(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Education, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Education
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

func (r *educationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, educationID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Education{}).
		Where("id = ?", educationID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *educationRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, educationIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(educationIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", educationIDs).
		Delete(&types.Education{}).Error; err != nil {
		return err
	}
	return nil
}
