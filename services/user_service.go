package services

import (
	"context"
	"strings"
	"time"

	"freshfetch/models"
	"freshfetch/repositories"
	"freshfetch/utils"
)

type UserService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List scopes non-staff callers to their own account.
func (s *UserService) List(ctx context.Context, principal models.Principal, filter models.UserFilter) ([]models.User, int64, error) {
	if !principal.IsStaff() {
		filter = models.UserFilter{Email: principal.Email, Page: filter.Page}
	}
	filter.Page = filter.Page.Normalize()
	return s.userRepo.List(ctx, filter)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
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
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	fields := models.Fields{"updatedAt": time.Now()}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Image != nil {
		fields["image"] = *req.Image
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.Password != nil {
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hashed
	}
	return s.userRepo.Update(ctx, id, fields)
}

func (s *UserService) Delete(ctx context.Context, principal models.Principal, id string) error {
	if principal.UserID == id {
		return validationError("you cannot delete your own account")
	}
	return s.userRepo.Delete(ctx, id)
}
