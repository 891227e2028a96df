package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/normalization"
	"github.com/edukita/edukita-backend/internal/repos"
	"github.com/edukita/edukita-backend/internal/requestdata"
	"github.com/edukita/edukita-backend/internal/storage"
	"github.com/edukita/edukita-backend/internal/types"
)

// WorkshopInput carries the mutable workshop fields shared by create and
// update. Slice fields replace the stored value when non-nil.
type WorkshopInput struct {
	Title      string
	Objective  string
	Facilities []string
	Topics     []string
	Moderators []string
	Speakers   []string
	Date       time.Time
	StartTime  string
	EndTime    string
	TimeZone   string
	Location   string
	Price      string
}

// GroupedWorkshops splits the catalog by price for the listing page.
type GroupedWorkshops struct {
	Free []*types.Workshop `json:"free"`
	Paid []*types.Workshop `json:"paid"`
}

type WorkshopService interface {
	Create(ctx context.Context, input WorkshopInput, poster *UploadedFile) (*types.Workshop, error)
	GetByID(ctx context.Context, workshopID uuid.UUID) (*types.Workshop, error)
	GetAll(ctx context.Context) (*GroupedWorkshops, error)
	GetOwn(ctx context.Context) ([]*types.Workshop, error)
	Search(ctx context.Context, query string) ([]*types.Workshop, error)
	Update(ctx context.Context, workshopID uuid.UUID, input WorkshopInput, poster *UploadedFile) (*types.Workshop, error)
	Delete(ctx context.Context, workshopID uuid.UUID) error
	Join(ctx context.Context, workshopID uuid.UUID) (*types.Workshop, error)
	Participants(ctx context.Context, workshopID uuid.UUID) ([]*types.User, error)
}

type workshopService struct {
	db           *gorm.DB
	log          *logger.Logger
	workshopRepo repos.WorkshopRepo
	userRepo     repos.UserRepo
	ownership    OwnershipService
	bucket       storage.BucketService
}

func NewWorkshopService(
	db *gorm.DB,
	baseLog *logger.Logger,
	workshopRepo repos.WorkshopRepo,
	userRepo repos.UserRepo,
	ownership OwnershipService,
	bucket storage.BucketService,
) WorkshopService {
	serviceLog := baseLog.With("service", "WorkshopService")
	return &workshopService{
		db:           db,
		log:          serviceLog,
		workshopRepo: workshopRepo,
		userRepo:     userRepo,
		ownership:    ownership,
		bucket:       bucket,
	}
}

func (ws *workshopService) Create(ctx context.Context, input WorkshopInput, poster *UploadedFile) (*types.Workshop, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	input.Title = normalization.TrimInputString(input.Title)
	if input.Title == "" || input.Objective == "" {
		return nil, fmt.Errorf("a title and an objective are required")
	}
	if input.StartTime == "" || input.EndTime == "" || input.Location == "" {
		return nil, fmt.Errorf("a start time, end time and location are required")
	}
	if poster == nil {
		return nil, fmt.Errorf("a poster is required")
	}

	posterRef, err := uploadAsset(ctx, ws.bucket, assetPrefixImage, poster)
	if err != nil {
		return nil, err
	}

	workshop := &types.Workshop{
		ID:         uuid.New(),
		Title:      input.Title,
		AuthorID:   rd.UserID,
		Poster:     posterRef,
		Objective:  input.Objective,
		Facilities: datatypes.NewJSONSlice(input.Facilities),
		Topics:     datatypes.NewJSONSlice(input.Topics),
		Moderators: datatypes.NewJSONSlice(input.Moderators),
		Speakers:   datatypes.NewJSONSlice(input.Speakers),
		Date:       input.Date,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		TimeZone:   input.TimeZone,
		Location:   input.Location,
		Price:      input.Price,
	}
	if workshop.TimeZone == "" {
		workshop.TimeZone = "WIB"
	}
	if workshop.Price == "" {
		workshop.Price = "free"
	}

	if _, err := ws.workshopRepo.Create(ctx, nil, []*types.Workshop{workshop}); err != nil {
		return nil, fmt.Errorf("failed to create workshop: %w", err)
	}

	if err := ws.ownership.Append(ctx, nil, rd.UserID, KindWorkshop, workshop.ID); err != nil {
		ws.log.Warn("Failed to append workshop to ownership registry",
			"workshop_id", workshop.ID, "owner_id", rd.UserID, "error", err)
	}
	return workshop, nil
}

func (ws *workshopService) GetByID(ctx context.Context, workshopID uuid.UUID) (*types.Workshop, error) {
	workshops, err := ws.workshopRepo.GetByIDs(ctx, nil, []uuid.UUID{workshopID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workshop: %w", err)
	}
	if len(workshops) == 0 {
		return nil, fmt.Errorf("workshop %s: %w", workshopID, ErrNotFound)
	}
	return workshops[0], nil
}

func (ws *workshopService) GetAll(ctx context.Context) (*GroupedWorkshops, error) {
	workshops, err := ws.workshopRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list workshops: %w", err)
	}
	grouped := &GroupedWorkshops{
		Free: []*types.Workshop{},
		Paid: []*types.Workshop{},
	}
	for _, w := range workshops {
		if w.Price == "" || w.Price == "free" {
			grouped.Free = append(grouped.Free, w)
		} else {
			grouped.Paid = append(grouped.Paid, w)
		}
	}
	return grouped, nil
}

func (ws *workshopService) GetOwn(ctx context.Context) ([]*types.Workshop, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	lists, err := ws.ownership.Lists(ctx, rd.UserID)
	if err != nil {
		return nil, err
	}
	return ws.workshopRepo.GetByIDs(ctx, nil, lists[KindWorkshop])
}

func (ws *workshopService) Search(ctx context.Context, query string) ([]*types.Workshop, error) {
	return ws.workshopRepo.SearchByTitle(ctx, nil, normalization.TrimInputString(query), searchLimit)
}

func (ws *workshopService) Update(ctx context.Context, workshopID uuid.UUID, input WorkshopInput, poster *UploadedFile) (*types.Workshop, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}

	workshop, err := ws.GetByID(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if !Allowed(ActionContentMutate, rd.UserID, rd.Role, workshop.AuthorID) {
		return nil, fmt.Errorf("user %s does not own workshop %s: %w", rd.UserID, workshopID, ErrForbidden)
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if input.Title = normalization.TrimInputString(input.Title); input.Title != "" {
		workshop.Title = input.Title
		fields["title"] = input.Title
	}
	if input.Objective != "" {
		workshop.Objective = input.Objective
		fields["objective"] = input.Objective
	}
	if input.Facilities != nil {
		workshop.Facilities = datatypes.NewJSONSlice(input.Facilities)
		fields["facilities"] = workshop.Facilities
	}
	if input.Topics != nil {
		workshop.Topics = datatypes.NewJSONSlice(input.Topics)
		fields["topics"] = workshop.Topics
	}
	if input.Moderators != nil {
		workshop.Moderators = datatypes.NewJSONSlice(input.Moderators)
		fields["moderators"] = workshop.Moderators
	}
	if input.Speakers != nil {
		workshop.Speakers = datatypes.NewJSONSlice(input.Speakers)
		fields["speakers"] = workshop.Speakers
	}
	if !input.Date.IsZero() {
		workshop.Date = input.Date
		fields["date"] = input.Date
	}
	if input.StartTime != "" {
		workshop.StartTime = input.StartTime
		fields["start_time"] = input.StartTime
	}
	if input.EndTime != "" {
		workshop.EndTime = input.EndTime
		fields["end_time"] = input.EndTime
	}
	if input.TimeZone != "" {
		workshop.TimeZone = input.TimeZone
		fields["time_zone"] = input.TimeZone
	}
	if input.Location != "" {
		workshop.Location = input.Location
		fields["location"] = input.Location
	}
	if input.Price != "" {
		workshop.Price = input.Price
		fields["price"] = input.Price
	}

	if poster != nil {
		newRef, err := replaceAsset(ctx, ws.bucket, workshop.Poster, assetPrefixImage, poster)
		if err != nil {
			return nil, err
		}
		workshop.Poster = newRef
		fields["poster_path"] = newRef.Path
		fields["poster_url"] = newRef.URL
	}

	if err := ws.workshopRepo.UpdateFields(ctx, nil, workshopID, fields); err != nil {
		return nil, fmt.Errorf("failed to update workshop: %w", err)
	}
	return workshop, nil
}

func (ws *workshopService) Delete(ctx context.Context, workshopID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("request data not set in context")
	}

	workshop, err := ws.GetByID(ctx, workshopID)
	if err != nil {
		return err
	}
	if !Allowed(ActionContentMutate, rd.UserID, rd.Role, workshop.AuthorID) {
		return fmt.Errorf("user %s does not own workshop %s: %w", rd.UserID, workshopID, ErrForbidden)
	}

	for _, asset := range workshop.Assets() {
		if asset.Path == "" {
			continue
		}
		if err := ws.bucket.DeleteFile(ctx, asset.Path); err != nil && !storage.IsNotFound(err) {
			return fmt.Errorf("failed to delete workshop asset %q: %w", asset.Path, ErrRemoteFailure)
		}
	}

	if err := ws.workshopRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{workshopID}); err != nil {
		return fmt.Errorf("failed to delete workshop: %w", err)
	}
	if err := ws.ownership.Remove(ctx, nil, workshop.AuthorID, KindWorkshop, workshopID); err != nil {
		ws.log.Warn("Failed to remove workshop from ownership registry",
			"workshop_id", workshopID, "owner_id", workshop.AuthorID, "error", err)
	}
	return nil
}

// Join registers the requester as a participant. Joining twice is a no-op.
func (ws *workshopService) Join(ctx context.Context, workshopID uuid.UUID) (*types.Workshop, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !Allowed(ActionWorkshopJoin, rd.UserID, rd.Role, uuid.Nil) {
		return nil, fmt.Errorf("joining a workshop requires authentication: %w", ErrForbidden)
	}

	workshop, err := ws.GetByID(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	for _, id := range workshop.Participants {
		if id == rd.UserID {
			return workshop, nil
		}
	}

	participants := append([]uuid.UUID(workshop.Participants), rd.UserID)
	workshop.Participants = datatypes.NewJSONSlice(participants)
	if err := ws.workshopRepo.UpdateFields(ctx, nil, workshopID, map[string]interface{}{
		"participants": workshop.Participants,
		"updated_at":   time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to join workshop: %w", err)
	}
	return workshop, nil
}

func (ws *workshopService) Participants(ctx context.Context, workshopID uuid.UUID) ([]*types.User, error) {
	workshop, err := ws.GetByID(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	return ws.userRepo.GetByIDs(ctx, nil, workshop.Participants)
}
