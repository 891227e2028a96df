package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/repos"
	"github.com/edukita/edukita-backend/internal/storage"
	"github.com/edukita/edukita-backend/internal/types"
)

const defaultItemConcurrency = 4

// CascadeService removes a user together with everything it owns: every
// owned article, education and workshop, their stored assets first, then the
// records, then the user itself. There is no distributed transaction across
// the database and the bucket; this is a best-effort forward-only cascade
// with aggregated failure reporting.
type CascadeService interface {
	DeleteUser(ctx context.Context, targetID, requesterID uuid.UUID, requesterRole string) (*CascadeSummary, error)
}

type cascadeService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	articleRepo   repos.ArticleRepo
	educationRepo repos.EducationRepo
	workshopRepo  repos.WorkshopRepo
	bucket        storage.BucketService
	guard         DeleteGuard

	// failureThreshold is the number of per-item failures tolerated before
	// the whole operation fails and the user record is kept. Keeping the
	// user preserves the back-reference lists pointing at whatever content
	// could not be cleaned up.
	failureThreshold int
	itemConcurrency  int64
}

func NewCascadeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	articleRepo repos.ArticleRepo,
	educationRepo repos.EducationRepo,
	workshopRepo repos.WorkshopRepo,
	bucket storage.BucketService,
	guard DeleteGuard,
	failureThreshold int,
) CascadeService {
	serviceLog := baseLog.With("service", "CascadeService")
	return &cascadeService{
		db:               db,
		log:              serviceLog,
		userRepo:         userRepo,
		articleRepo:      articleRepo,
		educationRepo:    educationRepo,
		workshopRepo:     workshopRepo,
		bucket:           bucket,
		guard:            guard,
		failureThreshold: failureThreshold,
		itemConcurrency:  defaultItemConcurrency,
	}
}

// cascadeItem is one resolved content record queued for deletion.
type cascadeItem struct {
	id         uuid.UUID
	assetPaths []string
}

// category bundles the per-kind pieces the cascade needs: the listed IDs
// from the ownership registry, a bulk resolver and a bulk record deleter.
type category struct {
	kind          ContentKind
	listedIDs     []uuid.UUID
	resolve       func(ctx context.Context, ids []uuid.UUID) ([]cascadeItem, error)
	deleteRecords func(ctx context.Context, ids []uuid.UUID) error
}

func (cs *cascadeService) DeleteUser(ctx context.Context, targetID, requesterID uuid.UUID, requesterRole string) (*CascadeSummary, error) {
	if !Allowed(ActionUserDelete, requesterID, requesterRole, targetID) {
		return nil, fmt.Errorf("user %s may not delete user %s: %w", requesterID, targetID, ErrForbidden)
	}

	if cs.guard != nil {
		acquired, err := cs.guard.Acquire(ctx, targetID)
		if err != nil {
			return nil, fmt.Errorf("delete guard: %w", err)
		}
		if !acquired {
			return nil, fmt.Errorf("cascading delete for user %s already running: %w", targetID, ErrConflict)
		}
		defer func() {
			if rErr := cs.guard.Release(context.WithoutCancel(ctx), targetID); rErr != nil {
				cs.log.Warn("Failed to release delete guard", "target_id", targetID, "error", rErr)
			}
		}()
	}

	users, err := cs.userRepo.GetByIDs(ctx, nil, []uuid.UUID{targetID})
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", targetID, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", targetID, ErrNotFound)
	}
	target := users[0]

	summary := NewCascadeSummary()
	var mu sync.Mutex

	categories := cs.categories(target)

	g, gctx := errgroup.WithContext(ctx)
	for _, cat := range categories {
		cat := cat
		g.Go(func() error {
			return cs.processCategory(gctx, cat, summary, &mu)
		})
	}
	if err := g.Wait(); err != nil {
		// Resolver or bulk-delete level failure: nothing about the user is
		// known to be clean, keep the user record.
		return summary, fmt.Errorf("cascade for user %s aborted: %v: %w", targetID, err, ErrRemoteFailure)
	}

	if len(summary.Errors) > cs.failureThreshold {
		cs.log.Warn("Cascade exceeded failure threshold, keeping user record",
			"target_id", targetID,
			"failures", len(summary.Errors),
			"threshold", cs.failureThreshold,
		)
		return summary, fmt.Errorf("cascade for user %s left %d items behind: %w", targetID, len(summary.Errors), ErrRemoteFailure)
	}

	// User record removal happens strictly after all category processing.
	if err := cs.userRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{targetID}); err != nil {
		return summary, fmt.Errorf("failed to delete user %s: %w", targetID, ErrRemoteFailure)
	}

	cs.log.Info("Cascading delete finished",
		"target_id", targetID,
		"articles_deleted", summary.Deleted[KindArticle],
		"educations_deleted", summary.Deleted[KindEducation],
		"workshops_deleted", summary.Deleted[KindWorkshop],
		"skipped", len(summary.Skipped[KindArticle])+len(summary.Skipped[KindEducation])+len(summary.Skipped[KindWorkshop]),
		"errors", len(summary.Errors),
	)
	return summary, nil
}

func (cs *cascadeService) categories(target *types.User) []category {
	return []category{
		{
			kind:      KindArticle,
			listedIDs: target.ArticleIDs,
			resolve: func(ctx context.Context, ids []uuid.UUID) ([]cascadeItem, error) {
				records, err := cs.articleRepo.GetByIDs(ctx, nil, ids)
				if err != nil {
					return nil, err
				}
				items := make([]cascadeItem, 0, len(records))
				for _, rec := range records {
					items = append(items, cascadeItem{id: rec.ID, assetPaths: assetPaths(rec.Assets())})
				}
				return items, nil
			},
			deleteRecords: func(ctx context.Context, ids []uuid.UUID) error {
				return cs.articleRepo.FullDeleteByIDs(ctx, nil, ids)
			},
		},
		{
			kind:      KindEducation,
			listedIDs: target.EducationIDs,
			resolve: func(ctx context.Context, ids []uuid.UUID) ([]cascadeItem, error) {
				records, err := cs.educationRepo.GetByIDs(ctx, nil, ids)
				if err != nil {
					return nil, err
				}
				items := make([]cascadeItem, 0, len(records))
				for _, rec := range records {
					items = append(items, cascadeItem{id: rec.ID, assetPaths: assetPaths(rec.Assets())})
				}
				return items, nil
			},
			deleteRecords: func(ctx context.Context, ids []uuid.UUID) error {
				return cs.educationRepo.FullDeleteByIDs(ctx, nil, ids)
			},
		},
		{
			kind:      KindWorkshop,
			listedIDs: target.WorkshopIDs,
			resolve: func(ctx context.Context, ids []uuid.UUID) ([]cascadeItem, error) {
				records, err := cs.workshopRepo.GetByIDs(ctx, nil, ids)
				if err != nil {
					return nil, err
				}
				items := make([]cascadeItem, 0, len(records))
				for _, rec := range records {
					items = append(items, cascadeItem{id: rec.ID, assetPaths: assetPaths(rec.Assets())})
				}
				return items, nil
			},
			deleteRecords: func(ctx context.Context, ids []uuid.UUID) error {
				return cs.workshopRepo.FullDeleteByIDs(ctx, nil, ids)
			},
		},
	}
}

func assetPaths(assets []types.AssetRef) []string {
	paths := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.Path != "" {
			paths = append(paths, a.Path)
		}
	}
	return paths
}

// processCategory resolves one category's listed IDs, removes each item's
// assets and then its record. Asset removal for an item always happens
// before that item's record removal; items whose assets could not be
// removed keep their records and are reported as errors.
func (cs *cascadeService) processCategory(ctx context.Context, cat category, summary *CascadeSummary, mu *sync.Mutex) error {
	if len(cat.listedIDs) == 0 {
		return nil
	}

	items, err := cat.resolve(ctx, cat.listedIDs)
	if err != nil {
		return fmt.Errorf("resolving %s records: %w", cat.kind, err)
	}

	resolved := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		resolved[item.id] = struct{}{}
	}
	for _, id := range cat.listedIDs {
		if _, ok := resolved[id]; !ok {
			// Dangling reference: already deleted, observable but not fatal.
			mu.Lock()
			summary.Skipped[cat.kind] = append(summary.Skipped[cat.kind], id)
			mu.Unlock()
			cs.log.Warn("Skipping dangling content reference", "kind", cat.kind, "id", id)
		}
	}

	sem := semaphore.NewWeighted(cs.itemConcurrency)
	var wg sync.WaitGroup
	var deletable []uuid.UUID
	var delMu sync.Mutex

	var acquireErr error
	for _, item := range items {
		item := item
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context canceled, usually because another category failed.
			// Stop launching items but keep waiting for the in-flight ones:
			// the summary must be final before DeleteUser hands it out.
			acquireErr = err
			break
		}
		wg.Add(1)
		go func() {
			defer sem.Release(1)
			defer wg.Done()
			if err := cs.deleteAssets(ctx, item); err != nil {
				mu.Lock()
				summary.Errors = append(summary.Errors, CascadeItemError{
					Kind: cat.kind,
					ID:   item.id,
					Err:  err.Error(),
				})
				mu.Unlock()
				cs.log.Warn("Asset removal failed, keeping content record",
					"kind", cat.kind, "id", item.id, "error", err)
				return
			}
			delMu.Lock()
			deletable = append(deletable, item.id)
			delMu.Unlock()
		}()
	}
	wg.Wait()
	if acquireErr != nil {
		return acquireErr
	}

	if len(deletable) == 0 {
		return nil
	}
	if err := cat.deleteRecords(ctx, deletable); err != nil {
		return fmt.Errorf("deleting %s records: %w", cat.kind, err)
	}

	mu.Lock()
	summary.Deleted[cat.kind] += len(deletable)
	mu.Unlock()
	return nil
}

func (cs *cascadeService) deleteAssets(ctx context.Context, item cascadeItem) error {
	return cs.bucket.DeleteFiles(ctx, item.assetPaths)
}
