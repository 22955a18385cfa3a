package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account. Email and username are unique lookup keys and never change
// after registration.
type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Email      string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	Username   string    `json:"username" gorm:"size:150;not null;uniqueIndex"`
	Password   string    `json:"-" gorm:"not null"` // bcrypt hash
	Bio        string    `json:"bio" gorm:"size:500"`
	AvatarURL  *string   `json:"avatar_url"`
	IsStaff    bool      `json:"is_staff" gorm:"not null;default:false"`
	IsVerified bool      `json:"is_verified" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserCompact is the author/sender shape embedded in other resources.
type UserCompact struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// UserProfile adds the derived follow counts and the viewer's relation to a user.
type UserProfile struct {
	User
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	IsFollowing    bool  `json:"is_following"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=150,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
