package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/types"
)

type WorkshopRepo interface {
	Create(ctx context.Context, tx *gorm.DB, workshops []*types.Workshop) ([]*types.Workshop, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, workshopIDs []uuid.UUID) ([]*types.Workshop, error)
	GetByAuthorIDs(ctx context.Context, tx *gorm.DB, authorIDs []uuid.UUID) ([]*types.Workshop, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Workshop, error)
	SearchByTitle(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Workshop, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, workshopID uuid.UUID, fields map[string]interface{}) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, workshopIDs []uuid.UUID) error
}

type workshopRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkshopRepo(db *gorm.DB, baseLog *logger.Logger) WorkshopRepo {
	repoLog := baseLog.With("repo", "WorkshopRepo")
	return &workshopRepo{db: db, log: repoLog}
}

func (r *workshopRepo) Create(ctx context.Context, tx *gorm.DB, workshops []*types.Workshop) ([]*types.Workshop, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(workshops) == 0 {
		return []*types.Workshop{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&workshops).Error; err != nil {
		return nil, err
	}
	return workshops, nil
}

func (r *workshopRepo) GetByIDs(ctx context.Context, tx *gorm.DB, workshopIDs []uuid.UUID) ([]*types.Workshop, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Workshop
	if len(workshopIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", workshopIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *workshopRepo) GetByAuthorIDs(ctx context.Context, tx *gorm.DB, authorIDs []uuid.UUID) ([]*types.Workshop, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Workshop
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

func (r *workshopRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Workshop, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Workshop
	if err := transaction.WithContext(ctx).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *workshopRepo) SearchByTitle(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Workshop, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Workshop
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

func (r *workshopRepo) UpdateFields(ctx context.Context, tx *gorm.DB, workshopID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Workshop{}).
		Where("id = ?", workshopID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *workshopRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, workshopIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(workshopIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", workshopIDs).
		Delete(&types.Workshop{}).Error; err != nil {
		return err
	}
	return nil
}
