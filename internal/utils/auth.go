package utils

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/edukita/edukita-backend/internal/logger"
	"github.com/edukita/edukita-backend/internal/normalization"
	"github.com/edukita/edukita-backend/internal/types"
)

func ValidateRegistration(ctx context.Context, user *types.User) error {
	if user == nil {
		return fmt.Errorf("no user given, cannot proceed with registration")
	}
	if user.Username == "" {
		return fmt.Errorf("a username is required to register")
	}
	if user.Email == "" {
		return fmt.Errorf("an email is required to register")
	}
	if user.Password == "" {
		return fmt.Errorf("a password is required to register")
	}
	return nil
}

func ValidateLogin(ctx context.Context, email, password string) error {
	if email == "" {
		return fmt.Errorf("email is required to login")
	}
	if password == "" {
		return fmt.Errorf("password is required to login")
	}
	return nil
}

func HashPassword(ctx context.Context, log *logger.Logger, user *types.User) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password")
	}
	user.Password = string(hashedPassword)
	return nil
}

func NormalizeUserFields(ctx context.Context, user *types.User) {
	user.Username = normalization.ParseInputString(user.Username)
	user.Email = normalization.ParseInputString(user.Email)
}
