package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/repos"
	"github.com/edukita/edukita-backend/internal/types"
)

// OwnershipService maintains the bidirectional invariant between a user's
// three back-reference lists and the author field of each content record.
// All list mutation goes through here instead of being scattered across
// handlers.
type OwnershipService interface {
	Append(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, kind ContentKind, contentID uuid.UUID) error
	Remove(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, kind ContentKind, contentID uuid.UUID) error
	Lists(ctx context.Context, ownerID uuid.UUID) (map[ContentKind][]uuid.UUID, error)
	Verify(ctx context.Context, ownerID uuid.UUID) (*OwnershipReport, error)
}

// OwnershipReport is the output of the consistency-check routine.
type OwnershipReport struct {
	// Dangling lists IDs that appear in a back-reference list but have no
	// backing record, or whose record is owned by someone else.
	Dangling map[ContentKind][]uuid.UUID `json:"dangling"`
	// Unlisted lists records whose author is the owner but whose ID is
	// missing from the corresponding back-reference list.
	Unlisted map[ContentKind][]uuid.UUID `json:"unlisted"`
}

func (r *OwnershipReport) Consistent() bool {
	for _, ids := range r.Dangling {
		if len(ids) > 0 {
			return false
		}
	}
	for _, ids := range r.Unlisted {
		if len(ids) > 0 {
			return false
		}
	}
	return true
}

type ownershipService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	articleRepo   repos.ArticleRepo
	educationRepo repos.EducationRepo
	workshopRepo  repos.WorkshopRepo
}

func NewOwnershipService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	articleRepo repos.ArticleRepo,
	educationRepo repos.EducationRepo,
	workshopRepo repos.WorkshopRepo,
) OwnershipService {
	serviceLog := baseLog.With("service", "OwnershipService")
	return &ownershipService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		articleRepo:   articleRepo,
		educationRepo: educationRepo,
		workshopRepo:  workshopRepo,
	}
}

func ownerList(owner *types.User, kind ContentKind) []uuid.UUID {
	switch kind {
	case KindArticle:
		return owner.ArticleIDs
	case KindEducation:
		return owner.EducationIDs
	case KindWorkshop:
		return owner.WorkshopIDs
	}
	return nil
}

func listColumn(kind ContentKind) (string, error) {
	switch kind {
	case KindArticle:
		return "article_ids", nil
	case KindEducation:
		return "education_ids", nil
	case KindWorkshop:
		return "workshop_ids", nil
	}
	return "", fmt.Errorf("unknown content kind: %q", kind)
}

func (os *ownershipService) Append(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, kind ContentKind, contentID uuid.UUID) error {
	column, err := listColumn(kind)
	if err != nil {
		return err
	}

	users, err := os.userRepo.GetByIDs(ctx, tx, []uuid.UUID{ownerID})
	if err != nil {
		return fmt.Errorf("failed to load owner %s: %w", ownerID, err)
	}
	if len(users) == 0 {
		return fmt.Errorf("owner %s: %w", ownerID, ErrNotFound)
	}
	owner := users[0]

	ids := ownerList(owner, kind)
	for _, id := range ids {
		if id == contentID {
			return nil
		}
	}
	ids = append(ids, contentID)

	if err := os.userRepo.UpdateFields(ctx, tx, ownerID, map[string]interface{}{
		column: datatypes.NewJSONSlice(ids),
	}); err != nil {
		return fmt.Errorf("failed to append %s %s to owner %s: %w", kind, contentID, ownerID, err)
	}
	return nil
}

func (os *ownershipService) Remove(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, kind ContentKind, contentID uuid.UUID) error {
	column, err := listColumn(kind)
	if err != nil {
		return err
	}

	users, err := os.userRepo.GetByIDs(ctx, tx, []uuid.UUID{ownerID})
	if err != nil {
		return fmt.Errorf("failed to load owner %s: %w", ownerID, err)
	}
	if len(users) == 0 {
		return fmt.Errorf("owner %s: %w", ownerID, ErrNotFound)
	}
	owner := users[0]

	ids := ownerList(owner, kind)
	kept := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != contentID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}

	if err := os.userRepo.UpdateFields(ctx, tx, ownerID, map[string]interface{}{
		column: datatypes.NewJSONSlice(kept),
	}); err != nil {
		return fmt.Errorf("failed to remove %s %s from owner %s: %w", kind, contentID, ownerID, err)
	}
	return nil
}

func (os *ownershipService) Lists(ctx context.Context, ownerID uuid.UUID) (map[ContentKind][]uuid.UUID, error) {
	users, err := os.userRepo.GetByIDs(ctx, nil, []uuid.UUID{ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to load owner %s: %w", ownerID, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("owner %s: %w", ownerID, ErrNotFound)
	}
	owner := users[0]
	return map[ContentKind][]uuid.UUID{
		KindArticle:   owner.ArticleIDs,
		KindEducation: owner.EducationIDs,
		KindWorkshop:  owner.WorkshopIDs,
	}, nil
}

func (os *ownershipService) Verify(ctx context.Context, ownerID uuid.UUID) (*OwnershipReport, error) {
	lists, err := os.Lists(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	report := &OwnershipReport{
		Dangling: map[ContentKind][]uuid.UUID{},
		Unlisted: map[ContentKind][]uuid.UUID{},
	}

	for kind, ids := range lists {
		resolved, owned, err := os.resolve(ctx, kind, ids, ownerID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := resolved[id]; !ok {
				report.Dangling[kind] = append(report.Dangling[kind], id)
			}
		}
		listed := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			listed[id] = struct{}{}
		}
		for _, id := range owned {
			if _, ok := listed[id]; !ok {
				report.Unlisted[kind] = append(report.Unlisted[kind], id)
			}
		}
	}
	return report, nil
}

// resolve returns the subset of ids that exist with the expected author, and
// the full set of record IDs authored by the owner.
func (os *ownershipService) resolve(ctx context.Context, kind ContentKind, ids []uuid.UUID, ownerID uuid.UUID) (map[uuid.UUID]struct{}, []uuid.UUID, error) {
	resolved := map[uuid.UUID]struct{}{}
	var owned []uuid.UUID

	switch kind {
	case KindArticle:
		records, err := os.articleRepo.GetByIDs(ctx, nil, ids)
		if err != nil {
			return nil, nil, err
		}
		for _, rec := range records {
			if rec.AuthorID == ownerID {
				resolved[rec.ID] = struct{}{}
			}
		}
		authored, err := os.articleRepo.GetByAuthorIDs(ctx, nil, []uuid.UUID{ownerID})
		if err != nil {
			return nil, nil, err
		}
		for _, rec := range authored {
			owned = append(owned, rec.ID)
		}
	case KindEducation:
		records, err := os.educationRepo.GetByIDs(ctx, nil, ids)
		if err != nil {
			return nil, nil, err
		}
		for _, rec := range records {
			if rec.AuthorID == ownerID {
				resolved[rec.ID] = struct{}{}
			}
		}
		authored, err := os.educationRepo.GetByAuthorIDs(ctx, nil, []uuid.UUID{ownerID})
		if err != nil {
			return nil, nil, err
		}
		for _, rec := range authored {
			owned = append(owned, rec.ID)
		}
	case KindWorkshop:
		records, err := os.workshopRepo.GetByIDs(ctx, nil, ids)
		if err != nil {
			return nil, nil, err
		}
		for _, rec := range records {
			if rec.AuthorID == ownerID {
				resolved[rec.ID] = struct{}{}
			}
		}
		authored, err := os.workshopRepo.GetByAuthorIDs(ctx, nil, []uuid.UUID{ownerID})
		if err != nil {
			return nil, nil, err
		}
		for _, rec := range authored {
			owned = append(owned, rec.ID)
		}
	default:
		return nil, nil, fmt.Errorf("unknown content kind: %q", kind)
	}

	return resolved, owned, nil
}
