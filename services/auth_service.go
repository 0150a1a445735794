package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"freshfetch/models"
	"freshfetch/repositories"
	"freshfetch/utils"
)

type AuthService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Register always creates a plain user; staff accounts are made through the users API.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return "", err
	}

	image := req.Image
	if image == "" {
		image = models.DefaultUserImage
	}

	now := time.Now()
	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hashed,
		Image:     image,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}
	return user.ID.Hex(), nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	valid, needsRehash, err := utils.VerifyPassword(user.Password, req.Password)
	if err != nil || !valid {
		return nil, ErrInvalidCredentials
	}

	if needsRehash {
		s.upgradePassword(ctx, user, req.Password)
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Token: token,
		User:  *user,
	}, nil
}

// upgradePassword moves a legacy bcrypt hash to argon2 after a successful login.
func (s *AuthService) upgradePassword(ctx context.Context, user *models.User, password string) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		slog.Warn("password rehash failed", "user_id", user.ID.Hex(), "error", err)
		return
	}
	if _, err := s.userRepo.Update(ctx, user.ID.Hex(), models.Fields{"password": hashed}); err != nil {
		slog.Warn("password rehash not stored", "user_id", user.ID.Hex(), "error", err)
		return
	}
	slog.Info("legacy password hash upgraded", "user_id", user.ID.Hex())
}

func (s *AuthService) Me(ctx context.Context, principal models.Principal) (*models.User, error) {
	return s.userRepo.FindByID(ctx, principal.UserID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, principal models.Principal, req models.UpdateProfileRequest) (*models.User, error) {
	fields := models.Fields{
		"name":      strings.TrimSpace(req.Name),
		"updatedAt": time.Now(),
	}
	if req.Image != "" {
		fields["image"] = req.Image
	}
	return s.userRepo.Update(ctx, principal.UserID, fields)
}
