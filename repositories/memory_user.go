package repositories

import (
	"context"
	"sync"

	"freshfetch/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[primitive.ObjectID]*models.User{}}
}

func cloneUser(u *models.User) *models.User {
	c := cloneDoc(u)
	c.Password = u.Password
	return c
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) List(_ context.Context, filter models.UserFilter) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*models.User{}
	for _, u := range r.users {
		if filter.Email != "" && u.Email != normalizeEmail(filter.Email) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !containsFold(compileSearch(filter.Search), u.Name, u.Email) {
			continue
		}
		matched = append(matched, u)
	}
	sortNewestFirst(matched,
		func(u *models.User) int64 { return u.CreatedAt.UnixNano() },
		func(u *models.User) string { return u.ID.Hex() })

	out := []models.User{}
	for _, u := range paginate(matched, filter.Page) {
		out = append(out, *cloneDoc(u))
	}
	return out, int64(len(matched)), nil
}

func (r *MemoryUserRepository) Update(_ context.Context, id string, fields models.Fields) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[oid]
	if !ok {
		return nil, ErrNotFound
	}

	password := u.Password
	patch := models.Fields{}
	for k, v := range fields {
		if k == "password" {
			if s, ok := v.(string); ok {
				password = s
			}
			continue
		}
		patch[k] = v
	}
	updated, err := mergeFields(u, patch)
	if err != nil {
		return nil, err
	}
	updated.Password = password
	r.users[oid] = updated
	return cloneUser(updated), nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[oid]; !ok {
		return ErrNotFound
	}
	delete(r.users, oid)
	return nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}
