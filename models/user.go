package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"

	DefaultUserImage = "https://i.ibb.co/vBR74KV/user.png"
)

var Roles = []string{RoleUser, RoleManager, RoleAdmin}

type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Image     string             `json:"image" bson:"image"`
	Role      string             `json:"role" bson:"role"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// IsStaff reports whether the role may manage the shop.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

func (p Principal) IsStaff() bool { return IsStaff(p.Role) }
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
