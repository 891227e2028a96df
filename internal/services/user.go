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
	"github.com/edukita/edukita-backend/internal/types"
)

// Profile is a user together with their authored content, resolved from the
// back-reference lists.
type Profile struct {
	User       *types.User        `json:"user"`
	Articles   []*types.Article   `json:"articles"`
	Educations []*types.Education `json:"educations"`
	Workshops  []*types.Workshop  `json:"workshops"`
}

type UserService interface {
	GetProfile(ctx context.Context) (*Profile, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetByUsername(ctx context.Context, username string) (*types.User, error)
	GetByRole(ctx context.Context, role string) ([]*types.User, error)
	GetAll(ctx context.Context) ([]*types.User, error)
	Search(ctx context.Context, query string) ([]*types.User, error)
	SetRole(ctx context.Context, targetID uuid.UUID) (*types.User, error)
	ResetRole(ctx context.Context, targetID uuid.UUID) (*types.User, error)
	UpdateUsername(ctx context.Context, username string) (*types.User, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	articleRepo   repos.ArticleRepo
	educationRepo repos.EducationRepo
	workshopRepo  repos.WorkshopRepo
	ownership     OwnershipService
}

func NewUserService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	articleRepo repos.ArticleRepo,
	educationRepo repos.EducationRepo,
	workshopRepo repos.WorkshopRepo,
	ownership OwnershipService,
) UserService {
	serviceLog := baseLog.With("service", "UserService")
	return &userService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		articleRepo:   articleRepo,
		educationRepo: educationRepo,
		workshopRepo:  workshopRepo,
		ownership:     ownership,
	}
}

func (us *userService) GetProfile(ctx context.Context) (*Profile, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}

	user, err := us.GetByID(ctx, rd.UserID)
	if err != nil {
		return nil, err
	}

	articles, err := us.articleRepo.GetByIDs(ctx, nil, user.ArticleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve articles for profile: %w", err)
	}
	educations, err := us.educationRepo.GetByIDs(ctx, nil, user.EducationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve educations for profile: %w", err)
	}
	workshops, err := us.workshopRepo.GetByIDs(ctx, nil, user.WorkshopIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workshops for profile: %w", err)
	}

	return &Profile{
		User:       user,
		Articles:   articles,
		Educations: educations,
		Workshops:  workshops,
	}, nil
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return users[0], nil
}

func (us *userService) GetByUsername(ctx context.Context, username string) (*types.User, error) {
	username = normalization.ParseInputString(username)
	users, err := us.userRepo.GetByUsernames(ctx, nil, []string{username})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return users[0], nil
}

func (us *userService) GetByRole(ctx context.Context, role string) ([]*types.User, error) {
	role = normalization.ParseInputString(role)
	if !types.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return us.userRepo.GetByRole(ctx, nil, role)
}

func (us *userService) GetAll(ctx context.Context) ([]*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !Allowed(ActionUserList, rd.UserID, rd.Role, uuid.Nil) {
		return nil, fmt.Errorf("listing users requires the root role: %w", ErrForbidden)
	}
	return us.userRepo.GetAll(ctx, nil)
}

func (us *userService) Search(ctx context.Context, query string) ([]*types.User, error) {
	return us.userRepo.SearchByUsername(ctx, nil, normalization.ParseInputString(query), searchLimit)
}

// SetRole promotes a regular user to admin. Only root may do this, and the
// target must currently hold the user role.
func (us *userService) SetRole(ctx context.Context, targetID uuid.UUID) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !Allowed(ActionUserSetRole, rd.UserID, rd.Role, targetID) {
		return nil, fmt.Errorf("changing roles requires the root role: %w", ErrForbidden)
	}

	target, err := us.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role != types.RoleUser {
		return nil, fmt.Errorf("user %s already holds role %q", targetID, target.Role)
	}

	if err := us.userRepo.UpdateFields(ctx, nil, targetID, map[string]interface{}{
		"role":       types.RoleAdmin,
		"updated_at": time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}
	target.Role = types.RoleAdmin
	us.log.Info("Promoted user to admin", "user_id", targetID, "by", rd.UserID)
	return target, nil
}

// ResetRole demotes an admin back to a regular user. Root accounts are never
// demoted through this path.
func (us *userService) ResetRole(ctx context.Context, targetID uuid.UUID) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !Allowed(ActionUserResetRole, rd.UserID, rd.Role, targetID) {
		return nil, fmt.Errorf("changing roles requires the root role: %w", ErrForbidden)
	}

	target, err := us.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role != types.RoleAdmin {
		return nil, fmt.Errorf("user %s is not an admin", targetID)
	}

	if err := us.userRepo.UpdateFields(ctx, nil, targetID, map[string]interface{}{
		"role":       types.RoleUser,
		"updated_at": time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to demote user: %w", err)
	}
	target.Role = types.RoleUser
	us.log.Info("Demoted admin to user", "user_id", targetID, "by", rd.UserID)
	return target, nil
}

func (us *userService) UpdateUsername(ctx context.Context, username string) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}

	username = normalization.ParseInputString(username)
	if username == "" {
		return nil, fmt.Errorf("a username is required")
	}

	user, err := us.GetByID(ctx, rd.UserID)
	if err != nil {
		return nil, err
	}
	if user.Username == username {
		return user, nil
	}

	taken, err := us.userRepo.UsernameOrEmailExists(ctx, nil, username, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("username %q is already taken", username)
	}

	if err := us.userRepo.UpdateFields(ctx, nil, rd.UserID, map[string]interface{}{
		"username":   username,
		"updated_at": time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to update username: %w", err)
	}
	user.Username = username
	return user, nil
}
