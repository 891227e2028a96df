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

type EducationService interface {
	Create(ctx context.Context, title, videoURL string, image *UploadedFile) (*types.Education, error)
	GetByID(ctx context.Context, educationID uuid.UUID) (*types.Education, error)
	GetLatest(ctx context.Context) ([]*types.Education, error)
	GetOwn(ctx context.Context) ([]*types.Education, error)
	Search(ctx context.Context, query string) ([]*types.Education, error)
	Update(ctx context.Context, educationID uuid.UUID, title, videoURL string, image *UploadedFile) (*types.Education, error)
	Delete(ctx context.Context, educationID uuid.UUID) error
}

type educationService struct {
	db            *gorm.DB
	log           *logger.Logger
	educationRepo repos.EducationRepo
	ownership     OwnershipService
	bucket        storage.BucketService
}

func NewEducationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	educationRepo repos.EducationRepo,
	ownership OwnershipService,
	bucket storage.BucketService,
) EducationService {
	serviceLog := baseLog.With("service", "EducationService")
	return &educationService{
		db:            db,
		log:           serviceLog,
		educationRepo: educationRepo,
		ownership:     ownership,
		bucket:        bucket,
	}
}

func (es *educationService) Create(ctx context.Context, title, videoURL string, image *UploadedFile) (*types.Education, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	title = normalization.TrimInputString(title)
	videoURL = normalization.TrimInputString(videoURL)
	if title == "" || videoURL == "" {
		return nil, fmt.Errorf("a title and a video URL are required")
	}
	if image == nil {
		return nil, fmt.Errorf("an image is required")
	}

	imageRef, err := uploadAsset(ctx, es.bucket, assetPrefixImage, image)
	if err != nil {
		return nil, err
	}

	education := &types.Education{
		ID:       uuid.New(),
		Title:    title,
		AuthorID: rd.UserID,
		VideoURL: videoURL,
		Image:    imageRef,
	}
	if _, err := es.educationRepo.Create(ctx, nil, []*types.Education{education}); err != nil {
		return nil, fmt.Errorf("failed to create education: %w", err)
	}

	if err := es.ownership.Append(ctx, nil, rd.UserID, KindEducation, education.ID); err != nil {
		es.log.Warn("Failed to append education to ownership registry",
			"education_id", education.ID, "owner_id", rd.UserID, "error", err)
	}
	return education, nil
}

func (es *educationService) GetByID(ctx context.Context, educationID uuid.UUID) (*types.Education, error) {
	educations, err := es.educationRepo.GetByIDs(ctx, nil, []uuid.UUID{educationID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch education: %w", err)
	}
	if len(educations) == 0 {
		return nil, fmt.Errorf("education %s: %w", educationID, ErrNotFound)
	}
	return educations[0], nil
}

func (es *educationService) GetLatest(ctx context.Context) ([]*types.Education, error) {
	return es.educationRepo.GetLatest(ctx, nil, latestLimit)
}

func (es *educationService) GetOwn(ctx context.Context) ([]*types.Education, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	lists, err := es.ownership.Lists(ctx, rd.UserID)
	if err != nil {
		return nil, err
	}
	return es.educationRepo.GetByIDs(ctx, nil, lists[KindEducation])
}

func (es *educationService) Search(ctx context.Context, query string) ([]*types.Education, error) {
	return es.educationRepo.SearchByTitle(ctx, nil, normalization.TrimInputString(query), searchLimit)
}

func (es *educationService) Update(ctx context.Context, educationID uuid.UUID, title, videoURL string, image *UploadedFile) (*types.Education, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}

	education, err := es.GetByID(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if !Allowed(ActionContentMutate, rd.UserID, rd.Role, education.AuthorID) {
		return nil, fmt.Errorf("user %s does not own education %s: %w", rd.UserID, educationID, ErrForbidden)
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if title = normalization.TrimInputString(title); title != "" {
		education.Title = title
		fields["title"] = title
	}
	if videoURL = normalization.TrimInputString(videoURL); videoURL != "" {
		education.VideoURL = videoURL
		fields["video_url"] = videoURL
	}

	if image != nil {
		newRef, err := replaceAsset(ctx, es.bucket, education.Image, assetPrefixImage, image)
		if err != nil {
			return nil, err
		}
		education.Image = newRef
		fields["image_path"] = newRef.Path
		fields["image_url"] = newRef.URL
	}

	if err := es.educationRepo.UpdateFields(ctx, nil, educationID, fields); err != nil {
		return nil, fmt.Errorf("failed to update education: %w", err)
	}
	return education, nil
}

func (es *educationService) Delete(ctx context.Context, educationID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("request data not set in context")
	}

	education, err := es.GetByID(ctx, educationID)
	if err != nil {
		return err
	}
	if !Allowed(ActionContentMutate, rd.UserID, rd.Role, education.AuthorID) {
		return fmt.Errorf("user %s does not own education %s: %w", rd.UserID, educationID, ErrForbidden)
	}

	for _, asset := range education.Assets() {
		if asset.Path == "" {
			continue
		}
		if err := es.bucket.DeleteFile(ctx, asset.Path); err != nil && !storage.IsNotFound(err) {
			return fmt.Errorf("failed to delete education asset %q: %w", asset.Path, ErrRemoteFailure)
		}
	}

	if err := es.educationRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{educationID}); err != nil {
		return fmt.Errorf("failed to delete education: %w", err)
	}
	if err := es.ownership.Remove(ctx, nil, education.AuthorID, KindEducation, educationID); err != nil {
		es.log.Warn("Failed to remove education from ownership registry",
			"education_id", educationID, "owner_id", education.AuthorID, "error", err)
	}
	return nil
}
