package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/normalization"
	"github.com/edukita/edukita-backend/internal/repos"
	"github.com/edukita/edukita-backend/internal/requestdata"
	"github.com/edukita/edukita-backend/internal/types"
	"github.com/edukita/edukita-backend/internal/utils"
)

type JWTClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	utils.NormalizeUserFields(ctx, user)
	if vErr := utils.ValidateRegistration(ctx, user); vErr != nil {
		return vErr
	}

	exists, err := as.userRepo.UsernameOrEmailExists(ctx, nil, user.Username, user.Email)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if exists {
		return fmt.Errorf("username or email already exists")
	}

	if hErr := utils.HashPassword(ctx, as.log, user); hErr != nil {
		return hErr
	}

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if user.Role == "" {
			user.Role = types.RoleUser
		}
		if _, cErr := as.userRepo.Create(ctx, tx, []*types.User{user}); cErr != nil {
			return fmt.Errorf("failed to create user: %w", cErr)
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, error) {
	email = normalization.ParseInputString(email)

	if vErr := utils.ValidateLogin(ctx, email, password); vErr != nil {
		return "", vErr
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", fmt.Errorf("error retrieving user by email: %w", err)
	}
	if len(users) == 0 {
		return "", fmt.Errorf("email or password is incorrect")
	}
	user := users[0]

	if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
		return "", fmt.Errorf("email or password is incorrect")
	}

	return as.generateAccessToken(user)
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        claims.Role,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
