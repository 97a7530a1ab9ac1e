package services

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/google/uuid"
	"github.com/meshup-app/server/internal/helpers"
	"github.com/meshup-app/server/internal/models"
)

type UserService struct {
	userRepo models.UserRepo
	cld      *cloudinary.Cloudinary
}

func NewUserService(userRepo models.UserRepo, cld *cloudinary.Cloudinary) *UserService {
	return &UserService{
		userRepo: userRepo,
		cld:      cld,
	}
}

func (us *UserService) CreateUser(user *models.User) (interface{}, error) {
	if err := models.Validate.Struct(user); err != nil {
		return nil, err
	}

	ok := helpers.IsPasswordStrong(user.Password)
	if !ok {
		return nil, fmt.Errorf("password is not strong enough")
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	return us.userRepo.CreateUser(context.Background(), user)
}

func (us *UserService) AuthenticateUser(email, password string) (interface{}, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("invalid email format: %v", err)
	}
	if err := models.Validate.Var(password, "required,min=8"); err != nil {
		return nil, fmt.Errorf("invalid password format: %v", err)
	}
	response, err := us.userRepo.AuthenticateUser(context.Background(), email, password)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %v", err)
	}

	return response, nil
}

func (us *UserService) RefreshToken(refreshToken string) (interface{}, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}
	response, err := us.userRepo.RefreshToken(context.Background(), refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %v", err)
	}
	return response, nil
}

func (us *UserService) GetUser(id uuid.UUID, accessToken string) (*models.User, error) {
	res, err := us.userRepo.GetUser(context.Background(), id, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return res, nil
}

func (us *UserService) GetUserByAddress(ctx context.Context, address string) (*models.User, error) {
	res, err := us.userRepo.GetUserByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by address: %v", err)
	}
	return res, nil
}

// GetGoogleAuthURL builds the Supabase OAuth authorize URL for Google
// sign-in. Tokens come back to the frontend as URL fragments.
func (us *UserService) GetGoogleAuthURL(redirectTo string) (string, error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	if supabaseURL == "" {
		return "", fmt.Errorf("SUPABASE_URL not set")
	}
	return fmt.Sprintf("%s/auth/v1/authorize?provider=google&redirect_to=%s",
		supabaseURL, url.QueryEscape(redirectTo)), nil
}

// UploadAvatar pushes the image to Cloudinary and stores the resulting
// URL on the profile.
func (us *UserService) UploadAvatar(ctx context.Context, userID uuid.UUID, imageData, accessToken string) (*models.User, error) {
	url, err := helpers.UploadImage(ctx, us.cld, imageData, helpers.AvatarFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %v", err)
	}
	return us.UpdateUser(ctx, map[string]interface{}{"avatar_url": url}, userID, accessToken)
}

func (us *UserService) UpdateUser(ctx context.Context, user map[string]interface{}, userid uuid.UUID, accessToken string) (*models.User, error) {
	now := time.Now()
	user["updated_at"] = now

	updatedUser, err := us.userRepo.UpdateUser(ctx, user, userid, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}

	return updatedUser, nil
}
