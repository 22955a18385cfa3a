package models

import "time"

// Post is authored content. Comments, likes and notifications pointing at a post
// are removed with it.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"-" gorm:"not null;index"`
	Author    *User     `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	MediaURL  *string   `json:"media_url"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Comments []Comment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Likes    []Like    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// EnrichedPost is a post as rendered for a particular viewer.
type EnrichedPost struct {
	Post
	Author        UserCompact `json:"author"`
	LikesCount    int64       `json:"likes_count"`
	CommentsCount int64       `json:"comments_count"`
	IsLiked       bool        `json:"is_liked"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content  string  `json:"content" validate:"required,min=1,max=5000"`
	MediaURL *string `json:"media_url,omitempty" validate:"omitempty,url"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content  *string `json:"content,omitempty" validate:"omitempty,min=1,max=5000"`
	MediaURL *string `json:"media_url,omitempty" validate:"omitempty,url"`
}
